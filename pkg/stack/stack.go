// Package stack defines the static registry of services and filesystem
// layout for the local data-analysis stack. The registry is fixed at
// design time; host ports are the only runtime-tunable aspect and are
// resolved from the environment file.
package stack

import (
	"fmt"
	"io/fs"
	"strconv"
)

// Service describes one orchestrated container service.
type Service struct {
	// Name is the compose service name.
	Name string

	// Description is a short human-readable purpose line.
	Description string

	// PortKey is the environment key that overrides the host port.
	// Empty for services with no published port.
	PortKey string

	// DefaultPort is the host port used when no override is present.
	DefaultPort int

	// Readiness names the readiness predicate for this service.
	// Only the database is polled during setup; the other services
	// become ready on their own schedule.
	Readiness string
}

// HasPort reports whether the service publishes a host port.
func (s Service) HasPort() bool { return s.PortKey != "" }

// Port resolves the host port from the environment map, falling back
// to the compiled-in default when the key is absent or malformed.
func (s Service) Port(env map[string]string) int {
	if v, ok := env[s.PortKey]; ok {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return s.DefaultPort
}

// URL returns the browser URL for the service on the given host.
func (s Service) URL(host string, env map[string]string) string {
	if !s.HasPort() {
		return "-"
	}
	return fmt.Sprintf("http://%s:%d", host, s.Port(env))
}

// DatabaseService is the name of the service whose readiness gates the
// provisioning pipeline.
const DatabaseService = "mysql"

// Services returns the full service registry in display order.
func Services() []Service {
	return []Service{
		{Name: "mysql", Description: "MySQL database engine", PortKey: "MYSQL_PORT", DefaultPort: 3306, Readiness: "database accepts connections"},
		{Name: "phpmyadmin", Description: "Database admin UI", PortKey: "PHPMYADMIN_PORT", DefaultPort: 8081},
		{Name: "metabase", Description: "Metabase BI", PortKey: "METABASE_PORT", DefaultPort: 3000},
		{Name: "superset", Description: "Superset BI", PortKey: "SUPERSET_PORT", DefaultPort: 8088},
		{Name: "streamlit", Description: "Interactive data explorer", PortKey: "STREAMLIT_PORT", DefaultPort: 8501},
		{Name: "jupyter", Description: "Notebook server", PortKey: "JUPYTER_PORT", DefaultPort: 8888},
		{Name: "backup", Description: "Scheduled database backups"},
	}
}

// Lookup returns the service with the given name.
func Lookup(name string) (Service, bool) {
	for _, s := range Services() {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// Directory describes one filesystem path the stack requires.
type Directory struct {
	// Path is relative to the project root. Parents are listed before
	// children; creation follows slice order.
	Path string

	// Mode is the permission mode applied on creation.
	Mode fs.FileMode
}

// Directories returns the fixed directory layout in creation order.
func Directories() []Directory {
	return []Directory{
		{Path: "data/mysql", Mode: 0o755},
		{Path: "data/datasets", Mode: 0o755},
		{Path: "data/metabase", Mode: 0o755},
		{Path: "data/superset", Mode: 0o755},
		{Path: "logs/mysql", Mode: 0o755},
		{Path: "logs/backup", Mode: 0o755},
		{Path: "backups", Mode: 0o755},
		{Path: "notebooks", Mode: 0o755},
		{Path: "mysql/init", Mode: 0o755},
		{Path: "superset/config", Mode: 0o755},
	}
}

// MutableRoots returns the top-level directories whose contents are
// wiped by cleanup. The directories themselves survive; only their
// contents are removed.
func MutableRoots() []string {
	return []string{"data", "logs", "backups"}
}

// PermissionRoots returns the top-level mutable directories that get
// mode 0755 after provisioning so the containers can write into them.
func PermissionRoots() []string {
	return []string{"data", "logs", "backups", "notebooks"}
}

// InitDir is the MySQL initialization directory, relative to the
// project root. Files here are executed by the database on first boot.
const InitDir = "mysql/init"
