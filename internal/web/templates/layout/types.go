// Package layout holds the page shell shared by every explorer page.
package layout

// FlashMessage is a one-shot notice shown on the next page
type FlashMessage struct {
	Type    string // "success", "error" or "info"
	Message string
}

// PageData is common to every page
type PageData struct {
	Title string
	Flash *FlashMessage
}
