package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/fiatlux/business/web/errs"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_FromDomain(t *testing.T) {
	type table struct {
		name    string
		err     error
		trusted bool
		status  int
	}

	tt := []table{
		{
			name:    "validation",
			err:     fmt.Errorf("verifying: %w", &database.ValidationError{Index: 2, Err: database.ErrBrokenLink}),
			trusted: true,
			status:  http.StatusNotAcceptable,
		},
		{
			name:    "ledger",
			err:     fmt.Errorf("rebuilding: %w", &ledger.TxError{Index: 1, Account: "Bob", Err: ledger.ErrInsufficientFunds}),
			trusted: true,
			status:  http.StatusBadRequest,
		},
		{
			name:    "internal",
			err:     errors.New("disk full"),
			trusted: false,
		},
	}

	t.Log("Given the need to map domain errors to web errors.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s error.", testID, tst.name)
			{
				f := func(t *testing.T) {
					err := errs.FromDomain(tst.err)

					if errs.IsTrusted(err) != tst.trusted {
						t.Fatalf("\t%s\tTest %d:\tShould be trusted[%v]: %v", failed, testID, tst.trusted, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be trusted[%v].", success, testID, tst.trusted)

					if !tst.trusted {
						return
					}

					if te := errs.GetTrusted(err); te.Status != tst.status {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, te.Status)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.status)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right status.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right status.", success, testID)

					if !errors.Is(err, errors.Unwrap(tst.err)) {
						t.Fatalf("\t%s\tTest %d:\tShould keep the domain error reachable.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould keep the domain error reachable.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
