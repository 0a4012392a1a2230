package utils

// PaginationMeta describes the page a list endpoint returned. It is embedded
// verbatim in JSON responses, so the field names are part of the API.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// CalculateMeta builds pagination metadata for a page of results. A
// non-positive limit means the caller fetched everything, which collapses to
// a single page.
func CalculateMeta(totalCount int64, page, limit int) PaginationMeta {
	if limit <= 0 {
		return PaginationMeta{
			Page:       1,
			Limit:      int(totalCount),
			TotalCount: totalCount,
			TotalPages: 1,
		}
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
