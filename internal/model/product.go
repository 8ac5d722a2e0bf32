package model

import (
	"strings"
	"time"
)

// DateLayout is the date-only format used for lastEditedDate
const DateLayout = "2006-01-02"

// Product is an inventory item as stored under the "products" collection.
// Quantity and prices are decimal strings, kept exactly as entered.
type Product struct {
	Record
	Name           string `json:"name"`
	Quantity       string `json:"inventory"`
	PurchasePrice  string `json:"purchasePrice"`
	SalePrice      string `json:"salePrice"`
	ImageURL       string `json:"imageUrl,omitempty"`
	LastEditedDate string `json:"lastEditedDate,omitempty"`
}

// ProductEdit carries the fields submitted from an edit form.
// Blank fields mean "leave unchanged".
type ProductEdit struct {
	Name          string
	Quantity      string
	PurchasePrice string
	SalePrice     string
	ImageURL      string
}

// BlankKeepsPrevious is the merge policy for product edits: any field left
// blank retains its stored value, and lastEditedDate is always stamped with
// the date of now.
func BlankKeepsPrevious(stored Product, edit ProductEdit, now time.Time) Product {
	merged := stored
	merged.Name = keep(edit.Name, stored.Name)
	merged.Quantity = keep(edit.Quantity, stored.Quantity)
	merged.PurchasePrice = keep(edit.PurchasePrice, stored.PurchasePrice)
	merged.SalePrice = keep(edit.SalePrice, stored.SalePrice)
	merged.ImageURL = keep(edit.ImageURL, stored.ImageURL)
	merged.LastEditedDate = now.Format(DateLayout)
	return merged
}

func keep(edited, previous string) string {
	if v := strings.TrimSpace(edited); v != "" {
		return v
	}
	return previous
}
