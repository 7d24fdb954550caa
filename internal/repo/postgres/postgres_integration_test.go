//go:build integration

package postgres

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kicon/kiconapi/internal/repo/storetest"
	"github.com/kicon/kiconapi/internal/testutil/containers"
)

func TestPostgresStores(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool := containers.NewPostgres(t)

	suite.Run(t, &storetest.Suite{
		Open: func(t *testing.T) storetest.Stores {
			containers.Truncate(t, pool)

			return storetest.Stores{
				Registrations: NewRegistrationsRepo(pool, nil),
				Contacts:      NewContactsRepo(pool, nil),
				Payments:      NewPaymentsRepo(pool, nil),
			}
		},
	})
}
