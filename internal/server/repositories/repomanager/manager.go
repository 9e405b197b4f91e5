// Package repomanager vends repositories bound to either the connection
// pool or a transaction, and runs the schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dailyreflect/internal/dbx"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/reflections"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Reflections(db dbx.DBTX) reflections.Repository
}
