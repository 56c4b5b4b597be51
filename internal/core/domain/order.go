package domain

import "sort"

// SortDocumentsNewestFirst orders documents by CreatedAt descending, ties by
// ID descending. IDs are time-ordered, so same-instant records stay newest first.
func SortDocumentsNewestFirst(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID > docs[j].ID
	})
}

// SortHistoryNewestFirst orders history entries by CreatedAt descending, ties by ID descending.
func SortHistoryNewestFirst(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
}
