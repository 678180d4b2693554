package pages

import (
	"time"

	"github.com/metaloot/registry/internal/web/templates/layout"
)

// HomeData is the search page
type HomeData struct {
	layout.PageData
}

// Custody is a custody balance shown under a record
type Custody struct {
	Mint    string
	Address string
	Amount  uint64
	Missing bool
}

// StudioData is the studio page
type StudioData struct {
	layout.PageData
	Seed          string
	Address       string
	Name          string
	Symbol        string
	URI           string
	Authority     string
	NativeToken   string
	NFTCollection []string
	Custody       *Custody
}

// PlayerData is the player page
type PlayerData struct {
	layout.PageData
	Seed      string
	Address   string
	Username  string
	URI       string
	Authority string
	CreatedAt time.Time
	Custody   *Custody
}

// ErrorData is an error page
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}
