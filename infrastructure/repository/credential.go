package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/database/postgres"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

const (
	credentialsTable = "client_credentials cc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:generate mockgen -source=credential.go -destination=mocks/credential.go -package=mocks
type CredentialRepository interface {
	GetByTenantAndService(ctx context.Context, tenantID string, service domain.Service) (*domain.TenantCredential, error)
	ListTargets(ctx context.Context) ([]domain.FetchTarget, error)
}

type credentialRepository struct {
	conn postgres.Conn
}

func NewCredentialRepository(conn postgres.Conn) CredentialRepository {
	return &credentialRepository{
		conn: conn,
	}
}

// GetByTenantAndService retorna nil, nil quando o tenant não tem a credencial
func (r *credentialRepository) GetByTenantAndService(ctx context.Context, tenantID string, service domain.Service) (*domain.TenantCredential, error) {
	query, args, err := squirrel.
		Select("cc.tenant_id, cc.service, cc.account_id, cc.access_token, cc.refresh_token, cc.extra").
		From(credentialsTable).
		Where(squirrel.Eq{"cc.tenant_id": tenantID, "cc.service": string(service)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var (
		cred    domain.TenantCredential
		svc     string
		rawJSON []byte
	)

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&cred.TenantID,
		&svc,
		&cred.AccountID,
		&cred.AccessToken,
		&cred.RefreshToken,
		&rawJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear credencial: %w", err)
	}

	cred.Service = domain.Service(svc)
	cred.Extra, err = decodeExtra(rawJSON)
	if err != nil {
		return nil, fmt.Errorf("erro ao decodificar extra da credencial: %w", err)
	}

	return &cred, nil
}

// ListTargets lista todos os pares (tenant, serviço) cadastrados
func (r *credentialRepository) ListTargets(ctx context.Context) ([]domain.FetchTarget, error) {
	query, args, err := squirrel.
		Select("cc.tenant_id, cc.service").
		From(credentialsTable).
		OrderBy("cc.tenant_id ASC", "cc.service ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	targets := make([]domain.FetchTarget, 0)
	for rows.Next() {
		var target domain.FetchTarget
		var svc string
		if err := rows.Scan(&target.TenantID, &svc); err != nil {
			return nil, fmt.Errorf("erro ao escanear alvo: %w", err)
		}
		target.Service = domain.Service(svc)
		targets = append(targets, target)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return targets, nil
}

// decodeExtra converte o jsonb em map de strings; valores não textuais viram texto
func decodeExtra(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}

	extra := make(map[string]string, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			extra[k] = val
		case float64:
			extra[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			extra[k] = fmt.Sprint(val)
		}
	}

	return extra, nil
}
