// internal/services/event_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/metrics"
	"github.com/javajoker/imi-ledger/internal/models"
	"github.com/javajoker/imi-ledger/internal/utils"
)

// EventService appends emitted facts to a hash-chained log inside the
// operation's transaction, then hands them to the publisher after commit.
type EventService struct {
	exec      *Executor
	publisher FactPublisher
	metrics   *metrics.LedgerMetrics
}

type EventSearchParams struct {
	utils.PaginationParams
	Kind        *models.EventKind `json:"kind,omitempty"`
	SubjectType string            `json:"subject_type,omitempty"`
	SubjectID   *uint64           `json:"subject_id,omitempty"`
}

const (
	SubjectPatent  = "patent"
	SubjectLicense = "license"
	SubjectAuction = "auction"
	SubjectRoyalty = "royalty"
)

func NewEventService(exec *Executor, publisher FactPublisher, m *metrics.LedgerMetrics) *EventService {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	return &EventService{
		exec:      exec,
		publisher: publisher,
		metrics:   m,
	}
}

func (s *EventService) emit(tx *Tx, kind models.EventKind, subjectType string, subjectID uint64, actor models.PrincipalID, payload map[string]interface{}) error {
	var previous models.LedgerEvent
	err := tx.Order("id DESC").Limit(1).Find(&previous).Error
	if err != nil {
		return internalError("failed to read event log head", err)
	}

	event := models.LedgerEvent{
		Kind:         kind,
		SubjectType:  subjectType,
		SubjectID:    subjectID,
		Actor:        actor,
		Payload:      models.JSONB(payload),
		PreviousHash: previous.Hash,
	}
	// postgres keeps microseconds; the hash must survive a round trip
	event.CreatedAt = s.exec.Now().Truncate(time.Microsecond)
	event.Hash, err = generateHash(event)
	if err != nil {
		return internalError("failed to hash fact", err)
	}

	if err := tx.Create(&event).Error; err != nil {
		return internalError("failed to append fact", err)
	}

	tx.AfterCommit(func(ctx context.Context) {
		s.metrics.IncFact(string(kind))
		logrus.WithFields(logrus.Fields{
			"kind":         kind,
			"subject_type": subjectType,
			"subject_id":   subjectID,
			"actor":        actor,
		}).Info("Ledger fact emitted")

		if err := s.publisher.Publish(ctx, event); err != nil {
			logrus.WithError(err).WithField("event_id", event.ID).Error("Failed to publish ledger fact")
		}
	})
	return nil
}

// List returns facts newest first.
func (s *EventService) List(ctx context.Context, params *EventSearchParams) ([]models.LedgerEvent, int64, error) {
	var events []models.LedgerEvent
	var total int64

	err := s.exec.View(ctx, func(db *gorm.DB) error {
		query := db.Model(&models.LedgerEvent{})
		if params.Kind != nil {
			query = query.Where("kind = ?", *params.Kind)
		}
		if params.SubjectType != "" {
			query = query.Where("subject_type = ?", params.SubjectType)
		}
		if params.SubjectID != nil {
			query = query.Where("subject_id = ?", *params.SubjectID)
		}

		if err := query.Count(&total).Error; err != nil {
			return internalError("failed to count events", err)
		}

		query = utils.ApplyPagination(query, params.PaginationParams)
		if err := query.Order("id DESC").Find(&events).Error; err != nil {
			return internalError("failed to list events", err)
		}
		return nil
	})
	return events, total, err
}

var errBrokenChain = errors.New("event chain is broken")

// VerifyChain recomputes every hash in id order and checks the links.
func (s *EventService) VerifyChain(ctx context.Context) error {
	return s.exec.View(ctx, func(db *gorm.DB) error {
		var events []models.LedgerEvent
		if err := db.Order("id ASC").Find(&events).Error; err != nil {
			return internalError("failed to read event log", err)
		}

		previous := ""
		for _, e := range events {
			hash, err := generateHash(e)
			if err != nil {
				return internalError(fmt.Sprintf("failed to hash event %d", e.ID), err)
			}
			if e.PreviousHash != previous || hash != e.Hash {
				return wrapError(KindInvalidState, fmt.Sprintf("event %d does not match its hash", e.ID), errBrokenChain)
			}
			previous = e.Hash
		}
		return nil
	})
}

func generateHash(e models.LedgerEvent) (string, error) {
	record := map[string]interface{}{
		"kind":          e.Kind,
		"subject_type":  e.SubjectType,
		"subject_id":    e.SubjectID,
		"actor":         e.Actor,
		"payload":       e.Payload,
		"previous_hash": e.PreviousHash,
		"timestamp":     e.CreatedAt.UnixNano(),
	}
	return utils.HashRecord(record)
}
