package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retracehq/retrace"
	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/infra/database/models"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// StoredRecord summarizes one persisted origin record for event fan-out.
type StoredRecord struct {
	ID    string
	Path  string
	Lines int
}

// InsertBatch persists one parent row per entry plus its child signature
// rows, all inside one transaction. Child rows are only written when the
// entry carries cors.
func (r *RecordRepository) InsertBatch(ctx context.Context, workspaceID string, entries []retrace.OriginRecord) ([]StoredRecord, error) {

	stored := make([]StoredRecord, 0, len(entries))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			record := models.OriginRecord{
				ID:          uuid.NewString(),
				WorkspaceID: workspaceID,
				Path:        entry.Path,
				Language:    entry.Language,
				Timestamp:   entry.Timestamp,
				GeneratedBy: entry.GeneratedBy,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}

			if len(entry.Cors) > 0 {
				rows := make([]models.LineSignature, 0, len(entry.Cors))
				for _, cor := range entry.Cors {
					rows = append(rows, models.LineSignature{
						RecordID:  record.ID,
						Signature: cor.Signature,
						Order:     cor.Order,
					})
				}
				if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
					return err
				}
			}

			stored = append(stored, StoredRecord{
				ID:    record.ID,
				Path:  entry.Path,
				Lines: len(entry.Cors),
			})
		}
		return nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.KindOperationFailed, "failed to store origin records", err)
	}

	return stored, nil
}

// ListSignatures returns every stored signature of a workspace annotated
// with the path of its parent origin record. The join keeps the query off a
// row-by-row Preload for workspaces with thousands of signatures.
func (r *RecordRepository) ListSignatures(ctx context.Context, workspaceID string) ([]retrace.SignatureEntry, error) {
	var rows []struct {
		Signature string
		LineOrder int
		RecordID  string
		Path      string
	}
	err := r.db.WithContext(ctx).
		Model(&models.LineSignature{}).
		Select("line_signatures.signature, line_signatures.line_order, line_signatures.record_id, origin_records.path").
		Joins("JOIN origin_records ON origin_records.id = line_signatures.record_id").
		Where("origin_records.workspace_id = ?", workspaceID).
		Order("line_signatures.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.WrapError(domain.KindOperationFailed, "failed to list signatures", err)
	}

	entries := make([]retrace.SignatureEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, retrace.SignatureEntry{
			Signature: row.Signature,
			Order:     row.LineOrder,
			Path:      row.Path,
			RecordID:  row.RecordID,
		})
	}
	return entries, nil
}
