package processes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

func setupProcessesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	usuarios := `
CREATE TABLE IF NOT EXISTS usuarios (
  id TEXT PRIMARY KEY,
  cpf TEXT NOT NULL UNIQUE,
  rg TEXT NOT NULL UNIQUE,
  nome_completo TEXT NOT NULL,
  data_nascimento DATETIME NOT NULL,
  foto_perfil TEXT,
  email TEXT,
  telefone TEXT,
  whatsapp TEXT,
  endereco TEXT,
  senha_hash TEXT,
  role TEXT NOT NULL DEFAULT 'aluno',
  solicitacao_professor INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	emprestimos := `
CREATE TABLE IF NOT EXISTS emprestimos (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  usuario_id TEXT NOT NULL,
  professor_autorizador_id TEXT,
  admin_aprovador_id TEXT,
  status_aprovacao TEXT NOT NULL DEFAULT 'pendente',
  status TEXT NOT NULL DEFAULT 'ativo',
  data_inicio DATETIME NOT NULL,
  data_devolucao_prevista DATETIME NOT NULL,
  data_devolucao_real DATETIME,
  pessoa_que_pegou TEXT,
  sala_que_pegou TEXT,
  localizacao_atual TEXT,
  observacoes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	processos := `
CREATE TABLE IF NOT EXISTS processos_administrativos (
  id TEXT PRIMARY KEY,
  emprestimo_id TEXT,
  usuario_id TEXT NOT NULL,
  tipo TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'aberto',
  descricao TEXT NOT NULL,
  resolucao TEXT,
  valor_multa INTEGER,
  data_ocorrencia DATETIME NOT NULL,
  data_resolucao DATETIME,
  observacoes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(usuarios).Error)
	require.NoError(t, conn.Exec(emprestimos).Error)
	require.NoError(t, conn.Exec(processos).Error)
	require.NoError(t, conn.Exec("DELETE FROM processos_administrativos").Error)
	return conn
}

func newTestService(t *testing.T) Service {
	t.Helper()
	conn := setupProcessesTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func openInput(processType enums.ProcessType) OpenCaseInput {
	return OpenCaseInput{
		UserID:      uuid.New(),
		Type:        processType,
		Description: "Item devolvido com a lente trincada",
		OccurredAt:  time.Now().UTC(),
	}
}

func TestOpenCase(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.OpenCase(context.Background(), openInput(enums.ProcessTypeBreakage))
	require.NoError(t, err)

	assert.Equal(t, enums.ProcessStatusOpen, created.Status)
	assert.Nil(t, created.ResolvedAt)
}

func TestOpenCase_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bad := openInput(enums.ProcessType("vandalism"))
	_, err := svc.OpenCase(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	negative := openInput(enums.ProcessTypeLoss)
	fine := int64(-500)
	negative.FineCents = &fine
	_, err = svc.OpenCase(ctx, negative)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestResolveCase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.OpenCase(ctx, openInput(enums.ProcessTypeLoss))
	require.NoError(t, err)

	fine := int64(15000)
	resolved, err := svc.ResolveCase(ctx, created.ID, ResolveCaseInput{
		Outcome:   "Multa aplicada e item reposto",
		FineCents: &fine,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.ProcessStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Outcome)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.FineCents)
	assert.Equal(t, int64(15000), *resolved.FineCents)

	_, err = svc.ResolveCase(ctx, created.ID, ResolveCaseInput{Outcome: "De novo"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestResolveCase_RequiresOutcome(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.OpenCase(ctx, openInput(enums.ProcessTypeTheft))
	require.NoError(t, err)

	_, err = svc.ResolveCase(ctx, created.ID, ResolveCaseInput{Outcome: "   "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestReferCaseToJustice_TerminalGuard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.OpenCase(ctx, openInput(enums.ProcessTypeTheft))
	require.NoError(t, err)

	referred, err := svc.ReferCaseToJustice(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.ProcessStatusReferredToJustice, referred.Status)

	_, err = svc.ReferCaseToJustice(ctx, created.ID, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	_, err = svc.ResolveCase(ctx, created.ID, ResolveCaseInput{Outcome: "Tentativa tardia"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestReferCaseToJustice_AppendsNotesWithoutResolving(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.OpenCase(ctx, openInput(enums.ProcessTypeTheft))
	require.NoError(t, err)

	notes := "Boletim de ocorrência 123/2026"
	referred, err := svc.ReferCaseToJustice(ctx, created.ID, &notes)
	require.NoError(t, err)

	assert.Equal(t, enums.ProcessStatusReferredToJustice, referred.Status)
	require.NotNil(t, referred.Notes)
	assert.Contains(t, *referred.Notes, notes)
	// referral is not a resolution
	assert.Nil(t, referred.ResolvedAt)
}

func TestUpdateCase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.OpenCase(ctx, openInput(enums.ProcessTypePoorCondition))
	require.NoError(t, err)

	inProgress := true
	fine := int64(2000)
	updated, err := svc.UpdateCase(ctx, created.ID, UpdateCaseInput{
		FineCents:  &fine,
		InProgress: &inProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ProcessStatusInProgress, updated.Status)
	require.NotNil(t, updated.FineCents)
	assert.Equal(t, int64(2000), *updated.FineCents)
}

func TestListOpenCases(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	open, err := svc.OpenCase(ctx, openInput(enums.ProcessTypeLoss))
	require.NoError(t, err)

	closed, err := svc.OpenCase(ctx, openInput(enums.ProcessTypeBreakage))
	require.NoError(t, err)
	_, err = svc.ResolveCase(ctx, closed.ID, ResolveCaseInput{Outcome: "Resolvido"})
	require.NoError(t, err)

	list, total, err := svc.ListOpenCases(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
}

func TestListCases_FilterByUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mine, err := svc.OpenCase(ctx, openInput(enums.ProcessTypeLoss))
	require.NoError(t, err)
	_, err = svc.OpenCase(ctx, openInput(enums.ProcessTypeLoss))
	require.NoError(t, err)

	list, total, err := svc.ListCases(ctx, ProcessFilter{UserID: &mine.UserID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}
