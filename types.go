package retrace

// Cor is one {signature, order} pair of an origin record. Order is the
// zero-based line index at authoring time; duplicate signatures are kept.
type Cor struct {
	Signature string `json:"signature"`
	Order     int    `json:"order"`
}

// OriginRecord is a snapshot of one authored file's lines at the moment of
// AI authoring.
type OriginRecord struct {
	Path        string `json:"path"`
	Language    string `json:"language"`
	Timestamp   int64  `json:"timestamp"` // epoch milliseconds
	GeneratedBy string `json:"generatedBy"`
	Cors        []Cor  `json:"cors"`
}

// RecordRequest is the body of POST /api/v1/workspaces/:id/records.
type RecordRequest struct {
	Entries []OriginRecord `json:"entries"`
}

// RecordResponse acknowledges a record call. OK is true even when the
// workspace is unknown; Message says what actually happened.
type RecordResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// SignatureEntry is one stored line signature enriched with the path of its
// parent origin record.
type SignatureEntry struct {
	Signature string `json:"signature"`
	Order     int    `json:"order"`
	Path      string `json:"path"`
	RecordID  string `json:"recordId"`
}

// Workspace is the tenant boundary grouping origin records and tokens.
type Workspace struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsArchived bool   `json:"isArchived"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// AccessToken describes an issued token. Token carries the raw value only in
// the issue response; every other read returns the masked prefix.
type AccessToken struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Token       string `json:"token,omitempty"`
	Prefix      string `json:"prefix"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"`
	LastUsedAt  *int64 `json:"lastUsedAt,omitempty"`
	ExpiresAt   *int64 `json:"expiresAt,omitempty"`
	IsRevoked   bool   `json:"isRevoked"`
}

// RecordEvent is emitted on the realtime stream whenever a batch entry is
// stored.
type RecordEvent struct {
	WorkspaceID string `json:"workspaceId"`
	RecordID    string `json:"recordId"`
	Path        string `json:"path"`
	Lines       int    `json:"lines"`
	RecordedAt  int64  `json:"recordedAt"`
}
