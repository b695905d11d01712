package fop

// PagedInfo describes the page window of a list response. It is derived
// from the request and the matching row count, never stored.
type PagedInfo struct {
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	TotalCount int64 `json:"total_count"`
}

// NewPagedInfo computes the paging summary for a total match count.
func NewPagedInfo(pageNumber, pageSize int, totalCount int64) PagedInfo {
	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize != 0 {
		totalPages++
	}
	return PagedInfo{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: totalCount,
	}
}
