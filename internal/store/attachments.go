package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type AttachmentStore struct {
	db Queryer
}

func (s *AttachmentStore) Insert(ctx context.Context, a *Attachment) error {
	query := `INSERT INTO anexos (
		codigo, nome_original, nome_arquivo, url, tipo_mime, tamanho, entidade_tipo, entidade_id
	) VALUES (
		:codigo, :nome_original, :nome_arquivo, :url, :tipo_mime, :tamanho, :entidade_tipo, :entidade_id
	) RETURNING id, created_at`

	if err := insertReturning(ctx, s.db, query, a, &a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	return nil
}

func (s *AttachmentStore) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]Attachment, error) {
	attachments := []Attachment{}
	query := `SELECT id, codigo, nome_original, nome_arquivo, url, tipo_mime, tamanho,
		entidade_tipo, entidade_id, created_at
	FROM anexos
	WHERE entidade_tipo = $1 AND entidade_id = $2
	ORDER BY created_at DESC, id DESC`

	if err := sqlx.SelectContext(ctx, s.db, &attachments, query, entityType, entityID); err != nil {
		return nil, fmt.Errorf("failed to query attachments of %s %d: %w", entityType, entityID, err)
	}
	return attachments, nil
}
