package app

import (
	"path/filepath"
)

// DefaultHome is the home directory used when none is configured
const DefaultHome = ".themis"

// Paths holds all resolved paths below the themis home directory
type Paths struct {
	Home string // .themis
	Etc  string // .themis/etc
	Var  string // .themis/var

	// Key files
	Setting string // .themis/setting.json
	Flows   string // .themis/etc/flows.yaml
	Journal string // .themis/var/journal.ndjson
	DB      string // .themis/var/themis.db
	Lock    string // .themis/var/themis.lock
}

// ResolvePaths returns all paths based on home; an empty home means DefaultHome
func ResolvePaths(home string) Paths {
	if home == "" {
		home = DefaultHome
	}

	p := Paths{
		Home: home,
		Etc:  filepath.Join(home, "etc"),
		Var:  filepath.Join(home, "var"),
	}

	p.Setting = filepath.Join(home, "setting.json")
	p.Flows = filepath.Join(p.Etc, "flows.yaml")
	p.Journal = filepath.Join(p.Var, "journal.ndjson")
	p.DB = filepath.Join(p.Var, "themis.db")
	p.Lock = filepath.Join(p.Var, "themis.lock")

	return p
}

// StateFile is the file the named wizard record is kept in by the file backend
func (p Paths) StateFile(name string) string {
	return filepath.Join(p.Var, name+".json")
}
