package main

import (
	"errors"
	"net/http"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
)

type PaymentResponse = response.APIResponse[*store.Payment]
type PaymentListResponse = response.APIResponse[[]store.Payment]
type AttachmentListResponse = response.APIResponse[[]store.Attachment]

const (
	receiptField = "comprovante"
	// multipartOverhead is the room left for multipart headers and
	// boundaries on top of the file size limit.
	multipartOverhead = 64 << 10
	multipartMemory   = 1 << 20
)

func (app *application) handleListPayments(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)

	payments, total, err := app.services.Payments.List(r.Context(), p.store())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved payments", payments, p.meta(total))
}

func (app *application) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	p, err := app.services.Payments.Get(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Successfully retrieved payment", p)
}

// @Summary		Create payment
// @Description	Records a driver payment and settles every freight listed in fretes_incluidos.
// @Description	The request fails as a whole if any freight is missing or already settled.
// @Tags			Pagamentos
// @Accept			json
// @Produce		json
// @Param			pagamento	body		object{motorista_id:int,periodo_fretes:string,fretes_incluidos:[]int,total_toneladas:number,valor_por_tonelada:number,valor_total:number,data_pagamento:string,metodo_pagamento:string}	true	"Payment"
// @Success		201			{object}	PaymentResponse
// @Failure		400			{object}	response.ErrorResponse	"Invalid payload or freight already settled"
// @Failure		404			{object}	response.ErrorResponse	"Driver or freight not found"
// @Router			/pagamentos [post]
func (app *application) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	p, err := app.services.Payments.Create(r.Context(), payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Payment created", p)
}

func (app *application) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	p, err := app.services.Payments.Update(r.Context(), id, payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Payment updated", p)
}

// @Summary		Delete payment
// @Description	Deletes a payment; its freights become pending again.
// @Tags			Pagamentos
// @Param			id	path		int	true	"Payment ID"
// @Success		200	{object}	MessageResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/pagamentos/{id} [delete]
func (app *application) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.services.Payments.Delete(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData[any](w, http.StatusOK, "Payment deleted", nil)
}

// @Summary		Upload payment receipt
// @Tags			Pagamentos
// @Accept			multipart/form-data
// @Produce		json
// @Param			id			path		int		true	"Payment ID"
// @Param			comprovante	formData	file	true	"Receipt file"
// @Success		200			{object}	PaymentResponse
// @Failure		400			{object}	response.ErrorResponse	"Missing or oversized file"
// @Failure		404			{object}	response.ErrorResponse
// @Router			/pagamentos/{id}/comprovante [post]
func (app *application) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if limit := app.config.uploads.maxBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			app.writeError(w, r, apperr.Field(receiptField, "too_large", "file exceeds the upload limit"))
			return
		}
		app.writeError(w, r, apperr.Field(receiptField, "invalid", "expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(receiptField)
	if err != nil {
		app.writeError(w, r, apperr.Field(receiptField, "required", "no file received"))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	p, err := app.services.Payments.AttachReceipt(r.Context(), id, header.Filename, mimeType, file)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Receipt uploaded", p)
}

func (app *application) handleListPaymentAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	list, err := app.services.Payments.Attachments(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved attachments", list, nil)
}
