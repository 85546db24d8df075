package evtdata

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

// HWAddress identifies one electronics channel.
type HWAddress struct {
	CoBo    uint8
	AsAd    uint8
	Aget    uint8
	Channel uint8
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type padMappingEntry struct {
	CoBo    int `db:"CoBo"`
	AsAd    int `db:"AsAd"`
	Aget    int `db:"AGET"`
	Channel int `db:"Channel"`
	Pad     int `db:"Pad"`
}

// GetPadMapFromDB reads the pad mapping valid for the given run.
func GetPadMapFromDB(db *sqlx.DB, runNumber int) (map[HWAddress]uint16, error) {
	query := "SELECT CoBo, AsAd, AGET, Channel, Pad FROM PadMapping WHERE MinRun <= %d AND MaxRun >= %d ORDER BY Pad"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Pad mapping read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	padMap := make(map[HWAddress]uint16)
	for rows.Next() {
		result := padMappingEntry{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		addr := HWAddress{
			CoBo:    uint8(result.CoBo),
			AsAd:    uint8(result.AsAd),
			Aget:    uint8(result.Aget),
			Channel: uint8(result.Channel),
		}
		padMap[addr] = uint16(result.Pad)
	}
	return padMap, rows.Err()
}
