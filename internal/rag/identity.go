package rag

// Identity is the caller's authorization context for one request. The zero
// value is an anonymous guest.
type Identity struct {
	// UserID is empty for guests.
	UserID string

	// Approved grants access to the resources partition.
	Approved bool

	// Credential is the caller's own generation credential, empty when the
	// caller has none.
	Credential string

	// StrictPrivate disables the public fallback: a caller with no private
	// index gets upload guidance instead of global results.
	StrictPrivate bool
}

// Guest reports whether the identity carries no user ID.
func (id Identity) Guest() bool { return id.UserID == "" }

// Provenance labels which knowledge source produced a retrieval.
type Provenance string

const (
	// UserRAG means results came exclusively from the caller's private
	// partition.
	UserRAG Provenance = "user_rag"

	// GlobalRAG means results came from the global partition alone.
	GlobalRAG Provenance = "global_rag"

	// CombinedRAG means results were merged from more than one public
	// partition.
	CombinedRAG Provenance = "combined_rag"

	// EmptyUserRAG means the caller required private results but has no
	// private partition. No search was performed.
	EmptyUserRAG Provenance = "empty_user_rag"

	// ProvenanceError means no partition was available to search.
	ProvenanceError Provenance = "error"
)
