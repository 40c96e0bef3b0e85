package rank

// PageInfo carries pagination metadata for one page of results. NextPage and
// PrevPage are zero when there is no such page.
type PageInfo struct {
	Page       int
	TotalPages int
	NextPage   int
	PrevPage   int
}

// CoercePage normalizes a requested page number to a valid one. Anything
// below 1 becomes 1; numbers beyond the last page are allowed, they simply
// address an empty page.
func CoercePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Paginate computes pagination metadata for totalMatches results at perPage
// results per page. TotalPages is the ceiling of totalMatches/perPage;
// NextPage is set only while pages remain ahead, PrevPage only past page 1.
func Paginate(totalMatches, page, perPage int) PageInfo {
	page = CoercePage(page)
	info := PageInfo{Page: page}
	if perPage > 0 {
		info.TotalPages = (totalMatches + perPage - 1) / perPage
	}
	if page < info.TotalPages {
		info.NextPage = page + 1
	}
	if page > 1 {
		info.PrevPage = page - 1
	}
	return info
}

// Offset returns the zero-based start index of a page.
func Offset(page, perPage int) int {
	return (CoercePage(page) - 1) * perPage
}
