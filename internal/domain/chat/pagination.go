package chat

// PaginationState is the page/limit/total bookkeeping shared by every paged
// list in the system, mirrored from the server-reported pagination block.
type PaginationState struct {
	TotalCount  int `json:"totalCount"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// HasMore reports whether another page can be requested.
func (p PaginationState) HasMore() bool {
	return p.CurrentPage < p.TotalPages
}

// FallbackPagination is the safe default used when the server omits or
// mangles its pagination block: TotalPages zero means HasMore is false, so a
// broken payload can never cause an infinite scroll loop.
func FallbackPagination(requestedPage int) PaginationState {
	return PaginationState{CurrentPage: requestedPage, TotalPages: 0, TotalCount: 0}
}
