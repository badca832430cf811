package domain

// Connection is a named database connection profile
type Connection struct {
	Database string `json:"database"`
	DSN      string `json:"dsn,omitempty"`
	Driver   string `json:"driver"`
	Name     string `json:"name"`
}

// Supported database/sql driver names
const (
	DriverMock     = "mock"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultConnection is used when no profile is configured
var DefaultConnection = Connection{
	Database: "megadb",
	Driver:   DriverMock,
	Name:     "local",
}

// FindConnection returns the profile with the given name
func FindConnection(conns []Connection, name string) (Connection, error) {
	for _, c := range conns {
		if c.Name == name {
			return c, nil
		}
	}
	return Connection{}, ErrConnectionNotFound
}
