package dto

// ── catalog module ──

// BulkAddNamesRequest adds staff or subject names
type BulkAddNamesRequest struct {
	Names []string `json:"names" binding:"required,min=1,max=1000,dive,max=150"`
}

// BulkAddNamesResponse how many names were new
type BulkAddNamesResponse struct {
	Kind       string `json:"kind"`
	Added      int64  `json:"added"`
	Duplicates int64  `json:"duplicates"`
}

// CatalogResponse every known name per catalog
type CatalogResponse struct {
	Departments []string `json:"departments"`
	Semesters   []string `json:"semesters"`
	Staff       []string `json:"staff"`
	Subjects    []string `json:"subjects"`
}

// ArchiveRequest the caller must type the confirmation word
type ArchiveRequest struct {
	Confirm string `json:"confirm" binding:"required,eq=ARCHIVE"`
}

// ArchiveResponse rows cleared by an archive
type ArchiveResponse struct {
	Ratings     int64 `json:"ratings"`
	Submissions int64 `json:"submissions"`
	Mappings    int64 `json:"mappings"`
	Students    int64 `json:"students"`
}
