package db

// Config selects the dialect and connection pool settings. Type is one
// of postgres, mysql or sqlite; sqlite ignores the host fields and reads
// Name as a DSN.
type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}
