package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/normalize"
	"github.com/farxc/gestao-fretes/internal/rules"
	"github.com/farxc/gestao-fretes/internal/sequence"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/farxc/gestao-fretes/internal/uploads"
	"github.com/lib/pq"
)

var paymentSchema = normalize.Schema{Fields: normalize.Rules{
	"motorista_nome":   normalize.OptionalUpper,
	"periodo_fretes":   upperText,
	"fretes_incluidos": normalize.IDList,
	"data_pagamento":   optionalDate,
	"status":           trimmed,
	"metodo_pagamento": trimmed,
	"observacoes":      normalize.OptionalUpper,
}}

type PaymentInput struct {
	DriverID     int64      `json:"motorista_id" validate:"required,gt=0"`
	DriverName   *string    `json:"motorista_nome" validate:"omitempty,min=3"`
	Period       string     `json:"periodo_fretes" validate:"required,min=3,max=100"`
	FreightIDs   []int64    `json:"fretes_incluidos" validate:"required,min=1,dive,gt=0"`
	FreightCount *int       `json:"quantidade_fretes" validate:"omitempty,gt=0"`
	TotalTons    float64    `json:"total_toneladas" validate:"gt=0"`
	RatePerTon   float64    `json:"valor_por_tonelada" validate:"gt=0"`
	TotalValue   float64    `json:"valor_total" validate:"gt=0"`
	PaymentDate  store.Date `json:"data_pagamento" validate:"required"`
	Status       string     `json:"status" validate:"omitempty,oneof=pendente processando pago cancelado"`
	Method       string     `json:"metodo_pagamento" validate:"required,oneof=pix transferencia_bancaria"`
	Notes        *string    `json:"observacoes"`
}

type PaymentPatch struct {
	DriverID    *int64      `json:"motorista_id" validate:"omitempty,gt=0"`
	DriverName  *string     `json:"motorista_nome" validate:"omitempty,min=3"`
	Period      *string     `json:"periodo_fretes" validate:"omitempty,min=3,max=100"`
	TotalTons   *float64    `json:"total_toneladas" validate:"omitempty,gt=0"`
	RatePerTon  *float64    `json:"valor_por_tonelada" validate:"omitempty,gt=0"`
	TotalValue  *float64    `json:"valor_total" validate:"omitempty,gt=0"`
	PaymentDate *store.Date `json:"data_pagamento"`
	Status      *string     `json:"status" validate:"omitempty,oneof=pendente processando pago cancelado"`
	Method      *string     `json:"metodo_pagamento" validate:"omitempty,oneof=pix transferencia_bancaria"`
	Notes       *string     `json:"observacoes"`
}

type PaymentService struct {
	base
	files FileStore
}

func (s *PaymentService) List(ctx context.Context, page store.Page) ([]store.Payment, int, error) {
	payments, total, err := s.store.Payments.List(ctx, page)
	if err != nil {
		return nil, 0, translate(err, "payment")
	}
	return payments, total, nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*store.Payment, error) {
	p, err := s.store.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "payment")
	}
	return p, nil
}

// Create records a payment and settles every listed freight with it.
// Nothing is written unless all of them exist and are still unsettled.
func (s *PaymentService) Create(ctx context.Context, payload Payload) (*store.Payment, error) {
	var in PaymentInput
	if err := s.decodeCreate(paymentSchema, payload, &in); err != nil {
		return nil, err
	}

	ids := rules.UniqueIDs(in.FreightIDs)
	p := &store.Payment{
		DriverID:     in.DriverID,
		Period:       in.Period,
		FreightCount: len(ids),
		FreightIDs:   pq.Int64Array(ids),
		TotalTons:    in.TotalTons,
		RatePerTon:   in.RatePerTon,
		TotalValue:   in.TotalValue,
		PaymentDate:  in.PaymentDate,
		Status:       in.Status,
		Method:       in.Method,
		Notes:        in.Notes,
	}
	if in.DriverName != nil {
		p.DriverName = *in.DriverName
	}
	if p.Status == "" {
		p.Status = store.PaymentStatusPending
	}

	err := s.withCode(ctx, sequence.Payment, store.ConstraintPaymentCode, func(code string) error {
		p.Code = code
		return s.store.WithTx(ctx, func(tx *store.Storage) error {
			driver, err := tx.Drivers.GetByID(ctx, p.DriverID)
			if err != nil {
				return must404(err, "driver %d not found", p.DriverID)
			}
			if p.DriverName == "" {
				p.DriverName = driver.Name
			}

			found, err := tx.Freights.LockForSettlement(ctx, ids)
			if err != nil {
				return err
			}
			if err := rules.CheckSettlement(ids, found); err != nil {
				return err
			}

			if err := tx.Payments.Insert(ctx, p); err != nil {
				return err
			}

			n, err := tx.Freights.Settle(ctx, p.ID, ids)
			if err != nil {
				return err
			}
			if n != int64(len(ids)) {
				return apperr.Rule("settled %d of %d freights, another payment claimed the rest", n, len(ids))
			}
			return nil
		})
	})
	if err != nil {
		return nil, translate(err, "payment")
	}

	s.log.Info(component, "payment %s settled %d freights", p.Code, p.FreightCount)
	return p, nil
}

func (s *PaymentService) Update(ctx context.Context, id int64, payload Payload) (*store.Payment, error) {
	changes, err := s.decodePatch(paymentSchema, payload, &PaymentPatch{})
	if err != nil {
		return nil, err
	}

	var updated *store.Payment
	err = s.store.WithTx(ctx, func(tx *store.Storage) error {
		if _, err := tx.Payments.GetByID(ctx, id); err != nil {
			return err
		}
		if driverID := optInt64(changes["motorista_id"]); driverID != nil {
			d, err := tx.Drivers.GetByID(ctx, *driverID)
			if err != nil {
				return must404(err, "driver %d not found", *driverID)
			}
			if !changes.Has("motorista_nome") {
				changes["motorista_nome"] = d.Name
			}
		}
		if err := tx.Payments.Update(ctx, id, changes); err != nil {
			return err
		}
		updated, err = tx.Payments.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "payment")
	}
	return updated, nil
}

// Delete removes a payment and returns its freights to the pending pool.
func (s *PaymentService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(tx *store.Storage) error {
		if _, err := tx.Payments.GetByID(ctx, id); err != nil {
			return err
		}
		n, err := tx.Freights.Unsettle(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Payments.Delete(ctx, id); err != nil {
			return err
		}
		s.log.Info(component, "payment %d deleted, %d freights back to pending", id, n)
		return nil
	})
	return translate(err, "payment")
}

// AttachReceipt stores an uploaded receipt, records it as an attachment of
// the payment and stamps the receipt metadata on the payment.
func (s *PaymentService) AttachReceipt(ctx context.Context, id int64, originalName, mimeType string, r io.Reader) (*store.Payment, error) {
	if s.files == nil {
		return nil, apperr.Internal(errors.New("receipt uploads are not configured"))
	}
	if _, err := s.store.Payments.GetByID(ctx, id); err != nil {
		return nil, translate(err, "payment")
	}

	file, err := s.files.Save(ctx, originalName, mimeType, r)
	switch {
	case errors.Is(err, uploads.ErrTooLarge):
		return nil, apperr.Field("comprovante", "too_large", "file exceeds the upload limit")
	case errors.Is(err, uploads.ErrUnsupportedType):
		return nil, apperr.Field("comprovante", "unsupported_type", "only PDF, JPG and PNG receipts are accepted")
	case err != nil:
		return nil, apperr.Internal(fmt.Errorf("save receipt: %w", err))
	}

	var updated *store.Payment
	err = s.withCode(ctx, sequence.Attachment, store.ConstraintAttachmentCode, func(code string) error {
		return s.store.WithTx(ctx, func(tx *store.Storage) error {
			a := &store.Attachment{
				Code:         code,
				OriginalName: file.OriginalName,
				FileName:     file.Name,
				URL:          file.URL,
				MimeType:     file.MimeType,
				Size:         file.Size,
				EntityType:   store.EntityPayment,
				EntityID:     id,
			}
			if err := tx.Attachments.Insert(ctx, a); err != nil {
				return err
			}
			if err := tx.Payments.SetReceipt(ctx, id, file.OriginalName, file.URL, s.now()); err != nil {
				return err
			}
			var err error
			updated, err = tx.Payments.GetByID(ctx, id)
			return err
		})
	})
	if err != nil {
		if rmErr := s.files.Remove(file.Name); rmErr != nil {
			s.log.Warn(component, "could not remove orphaned upload %s: %v", file.Name, rmErr)
		}
		return nil, translate(err, "payment")
	}
	return updated, nil
}

// Attachments lists the files attached to a payment.
func (s *PaymentService) Attachments(ctx context.Context, id int64) ([]store.Attachment, error) {
	if _, err := s.store.Payments.GetByID(ctx, id); err != nil {
		return nil, translate(err, "payment")
	}
	list, err := s.store.Attachments.ListByEntity(ctx, store.EntityPayment, id)
	if err != nil {
		return nil, translate(err, "attachment")
	}
	return list, nil
}
