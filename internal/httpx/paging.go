package httpx

import (
	"net/http"
	"strconv"
)

// paging reads page and pageSize, falling back to 1 and 10 on anything
// that is not a positive integer.
func paging(r *http.Request) (pageNo, size, skip int) {
	pageNo = positive(r.URL.Query().Get("page"), 1)
	size = positive(r.URL.Query().Get("pageSize"), 10)
	return pageNo, size, (pageNo - 1) * size
}

func positive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
