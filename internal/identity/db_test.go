package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/config"
	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
)

func setupIdentityTestDB(t *testing.T) *gorm.DB {
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
	professores := `
CREATE TABLE IF NOT EXISTS professores (
  id TEXT PRIMARY KEY,
  usuario_id TEXT NOT NULL UNIQUE,
  matricula TEXT NOT NULL UNIQUE,
  departamento TEXT,
  cargo TEXT,
  ativo INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(usuarios).Error)
	require.NoError(t, conn.Exec(professores).Error)
	require.NoError(t, conn.Exec("DELETE FROM professores").Error)
	require.NoError(t, conn.Exec("DELETE FROM usuarios").Error)
	return conn
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func seedUser(t *testing.T, conn *gorm.DB, cpfDigits string, role enums.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New(),
		CPF:       cpfDigits,
		RG:        "rg-" + cpfDigits,
		FullName:  "Usuário " + cpfDigits,
		BirthDate: time.Date(1990, time.March, 10, 0, 0, 0, 0, time.UTC),
		Role:      role,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}
