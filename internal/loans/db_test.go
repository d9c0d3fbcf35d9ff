package loans

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
)

func setupLoansTestDB(t *testing.T) *gorm.DB {
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
	itens := `
CREATE TABLE IF NOT EXISTS itens (
  id TEXT PRIMARY KEY,
  nome TEXT NOT NULL,
  descricao TEXT,
  categoria TEXT,
  codigo_patrimonio TEXT UNIQUE,
  disponivel INTEGER NOT NULL DEFAULT 1,
  condicao TEXT NOT NULL DEFAULT 'bom',
  foto TEXT,
  localizacao TEXT,
  tags TEXT,
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
	require.NoError(t, conn.Exec(usuarios).Error)
	require.NoError(t, conn.Exec(itens).Error)
	require.NoError(t, conn.Exec(emprestimos).Error)
	require.NoError(t, conn.Exec("DELETE FROM emprestimos").Error)
	require.NoError(t, conn.Exec("DELETE FROM itens").Error)
	require.NoError(t, conn.Exec("DELETE FROM usuarios").Error)
	return conn
}

func seedLoanUser(t *testing.T, conn *gorm.DB, role enums.Role) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:        id,
		CPF:       id.String()[:11],
		RG:        "rg-" + id.String(),
		FullName:  "Usuário Teste",
		BirthDate: time.Date(1992, time.May, 5, 0, 0, 0, 0, time.UTC),
		Role:      role,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedLoanItem(t *testing.T, conn *gorm.DB, available bool) *models.Item {
	t.Helper()
	item := &models.Item{
		ID:        uuid.New(),
		Name:      "Item Teste",
		Available: available,
		Condition: enums.ItemConditionGood,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}
