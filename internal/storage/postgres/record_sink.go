package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openjuris/docketsync/internal/courtapi"
	"github.com/openjuris/docketsync/internal/models"
)

// RecordSink persists translated court records into the directory tables.
// Upserts are keyed on the provider's external id.
type RecordSink struct {
	db *gorm.DB
}

func NewRecordSink(db *gorm.DB) *RecordSink {
	return &RecordSink{db: db}
}

// SaveOpinions upserts a batch of opinions and returns how many rows were
// written.
func (s *RecordSink) SaveOpinions(ctx context.Context, opinions []courtapi.Opinion) (int, error) {
	if len(opinions) == 0 {
		return 0, nil
	}

	rows := make([]models.Opinion, 0, len(opinions))
	for _, op := range opinions {
		rows = append(rows, models.Opinion{
			ExternalID:   op.ExternalID,
			CaseName:     op.CaseName,
			Court:        op.Court,
			DateFiled:    op.DateFiled,
			DocketNumber: op.DocketNumber,
			AuthorID:     op.AuthorID,
		})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"case_name", "court", "date_filed", "docket_number", "author_id", "updated_at",
		}),
	}).CreateInBatches(rows, 100).Error
	if err != nil {
		return 0, fmt.Errorf("save opinions: %w", err)
	}
	return len(rows), nil
}

// SaveJudges upserts judge profiles. When skipFresherThan is non-zero,
// profiles refreshed after that time are left alone so stale-only syncs
// do not churn rows that were recently updated.
func (s *RecordSink) SaveJudges(ctx context.Context, judges []courtapi.Judge, skipFresherThan time.Time) (int, error) {
	if len(judges) == 0 {
		return 0, nil
	}

	saved := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, j := range judges {
			if !skipFresherThan.IsZero() {
				var count int64
				if err := tx.Model(&models.Judge{}).
					Where("external_id = ? AND updated_at > ?", j.ExternalID, skipFresherThan).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
			}

			row := models.Judge{
				ExternalID: j.ExternalID,
				FullName:   j.FullName,
				Gender:     j.Gender,
				BirthDate:  j.BirthDate,
			}
			if len(j.Positions) > 0 {
				row.Court = j.Positions[0].Court
				row.Title = j.Positions[0].Title
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"full_name", "gender", "birth_date", "court", "title", "updated_at",
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save judges: %w", err)
	}
	return saved, nil
}
