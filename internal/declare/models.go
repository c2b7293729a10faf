package declare

import "time"

// Item is a sellable product identified by its barcode on the declare pages.
type Item struct {
	ItemID        int64  `json:"itemId"`
	Name          string `json:"name"`
	Barcode       string `json:"barcode"`
	FamilyCat     string `json:"familyCat,omitempty"`
	SectionCat    string `json:"sectionCat,omitempty"`
	DepartmentCat string `json:"departmentCat,omitempty"`
	ClassCat      string `json:"classCat,omitempty"`
}

// Supplier is a vendor row used by the lookup endpoints.
type Supplier struct {
	SupplierID int64  `json:"supplierId"`
	Name       string `json:"supplierName"`
}

// RecentDeclaration is one shelfentries row joined with its item, as shown
// in the "recent declarations at this location" table.
type RecentDeclaration struct {
	EntryID   int64     `json:"entryId"`
	ItemID    int64     `json:"itemId"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode"`
	Quantity  int       `json:"quantity"`
	EntryDate time.Time `json:"entryDate"`
}

// DeclarationRow is one (item, location, quantity) tuple submitted for
// insertion. Values arrive as text from scans and form fields; the writer
// validates and parses them before anything reaches the database.
type DeclarationRow struct {
	ItemID   string `json:"itemId"`
	Quantity string `json:"quantity"`
	LocID    string `json:"locId"`
}

// BulkOutcome reports a multi-row write: ok and failed count the rows that
// passed validation, and Errors carries a human-readable message for every
// rejected or failed row. Nothing is silently dropped.
type BulkOutcome struct {
	OK     int      `json:"ok"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}
