package dms

import "fmt"

// ListingKind selects which documents a listing shows.
type ListingKind int

const (
	ListAll ListingKind = iota
	ListStarred
	ListRecent
	ListFolder
)

// Listing is a document list view. FolderID is only used by ListFolder.
type Listing struct {
	Kind     ListingKind
	FolderID int64
}

func AllDocuments() Listing     { return Listing{Kind: ListAll} }
func StarredDocuments() Listing { return Listing{Kind: ListStarred} }
func RecentDocuments() Listing  { return Listing{Kind: ListRecent} }

func FolderListing(folderID int64) Listing {
	return Listing{Kind: ListFolder, FolderID: folderID}
}

func (l Listing) String() string {
	switch l.Kind {
	case ListAll:
		return "all"
	case ListStarred:
		return "starred"
	case ListRecent:
		return "recent"
	case ListFolder:
		return fmt.Sprintf("folder %d", l.FolderID)
	default:
		return fmt.Sprintf("Listing(%d)", int(l.Kind))
	}
}
