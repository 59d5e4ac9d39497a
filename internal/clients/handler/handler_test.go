package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"clientview/internal/clients/handler/mocks"
	"clientview/internal/clients/join"
	"clientview/internal/clients/models"
	"clientview/internal/document"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/middleware/admin"
	"clientview/pkg/platform/middleware/auth"
	"clientview/pkg/testutil"
)

const testAdminToken = "admin-secret"

type ClientHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestClientHandlerSuite(t *testing.T) {
	suite.Run(t, new(ClientHandlerSuite))
}

func (s *ClientHandlerSuite) SetupTest() {
	s.router = s.newRouter(nil)
}

func (s *ClientHandlerSuite) newRouter(validator auth.JWTValidator) chi.Router {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(s.service, logger, validator, testAdminToken).Register(r)
	return r
}

func (s *ClientHandlerSuite) TestList() {
	s.Run("store data", func() {
		s.service.EXPECT().List(gomock.Any()).Return(&models.ListResult{
			Clients: []join.ClientView{{
				Client:    document.Document{"PTY_ID": "01"},
				Addresses: []join.AddressView{{Address: document.Document{"Add_ID": "01"}}},
			}},
			Source: models.SourceStore,
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients"))
		testutil.AssertStatusOK(s.T(), rr)
		s.Equal("store", rr.Header().Get(HeaderDataSource))
		s.JSONEq(`[{"client":{"PTY_ID":"01"},"addresses":[{"address":{"Add_ID":"01"},"state":null}]}]`, rr.Body.String())
	})

	s.Run("empty store renders an empty array", func() {
		s.service.EXPECT().List(gomock.Any()).Return(&models.ListResult{
			Clients: []join.ClientView{},
			Source:  models.SourceSample,
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients"))
		s.Equal("sample", rr.Header().Get(HeaderDataSource))
		s.JSONEq(`[]`, rr.Body.String())
	})

	s.Run("internal errors are opaque", func() {
		s.service.EXPECT().List(gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "pq: connection reset by peer"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients"))
		s.Equal(http.StatusInternalServerError, rr.Code)
		s.NotContains(rr.Body.String(), "connection reset")
	})
}

func (s *ClientHandlerSuite) TestCreateLegacyShape() {
	s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd models.CreateClientCommand) (*join.ClientView, error) {
			s.True(cmd.Legacy)
			s.Equal("01", cmd.Client["PTY_ID"])
			s.Require().Len(cmd.Addresses, 1)
			s.Equal("Fresno", cmd.Addresses[0]["Add_City"])
			return &join.ClientView{
				Client: cmd.Client,
				Addresses: []join.AddressView{{
					Address: document.Document{"Add_ID": "01", "Add_PartyID": "01"},
					State:   document.Document{"Stt_ID": "CA"},
				}},
			}, nil
		})

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/clients",
		`{"party":{"PTY_ID":"01"},"address":{"Add_City":"Fresno"}}`)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	s.JSONEq(`{"message":"Created","data":{"client":{"PTY_ID":"01"},"addresses":[{"address":{"Add_ID":"01","Add_PartyID":"01"},"state":{"Stt_ID":"CA"}}]}}`, rr.Body.String())
}

func (s *ClientHandlerSuite) TestCreateBundledShape() {
	s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd models.CreateClientCommand) (*join.ClientView, error) {
			s.False(cmd.Legacy)
			s.Require().Len(cmd.Addresses, 1)
			s.Equal("first", cmd.Addresses[0]["Add_Line1"])
			return &join.ClientView{Client: cmd.Client, Addresses: []join.AddressView{}}, nil
		})

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/clients",
		`{"client":{"PTY_ID":"02"},"addresses":[{"address":{"Add_Line1":"first"}},{"address":{"Add_Line1":"second"}}]}`)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
}

func (s *ClientHandlerSuite) TestCreateBundleRequiresAddress() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/clients/bundle",
		`{"client":{"PTY_ID":"02"},"addresses":[]}`)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
}

func (s *ClientHandlerSuite) TestCreateMalformedBody() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/clients", `{"party":`)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *ClientHandlerSuite) TestCreateWhileDisconnected() {
	s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnavailable, "database not connected"))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/clients/bundle",
		`{"client":{"PTY_ID":"02"},"addresses":[{"address":{}}]}`)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
}

func (s *ClientHandlerSuite) TestDelete() {
	s.Run("single address", func() {
		s.service.EXPECT().DeleteAddress(gomock.Any(), "01", "a1").Return(int64(1), nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/clients/01?addressId=a1"))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{"message":"Address deleted","deletedCount":1,"scope":{"ptyId":"01","addressId":"a1"}}`, rr.Body.String())
	})

	s.Run("whole client", func() {
		s.service.EXPECT().DeleteClient(gomock.Any(), "01").
			Return(&models.DeleteClientResult{DeletedPartyCount: 1, DeletedAddressCount: 3}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/clients/01"))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{"message":"Client deleted","deletedPartyCount":1,"deletedAddressCount":3,"scope":{"ptyId":"01"}}`, rr.Body.String())
	})
}

func (s *ClientHandlerSuite) TestMaintenanceRoutesRequireAdminToken() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/seed"))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)

	s.service.EXPECT().Seed(gomock.Any()).Return(&models.SeedResult{
		Collections: map[string]models.SeedCounts{"OPT_Party": {Inserted: 2}},
	}, nil)
	req := testutil.NewRequest(s.T(), http.MethodPost, "/seed")
	req.Header.Set(admin.HeaderAdminToken, testAdminToken)
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`{"message":"Seed applied","collections":{"OPT_Party":{"inserted":2,"updated":0}}}`, rr.Body.String())

	s.service.EXPECT().Debug(gomock.Any()).Return(&models.DebugDump{
		Parties:   []document.Document{{"PTY_ID": "01"}},
		Addresses: []document.Document{},
	}, nil)
	req = testutil.NewRequest(s.T(), http.MethodGet, "/debug")
	req.Header.Set(admin.HeaderAdminToken, testAdminToken)
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`{"parties":[{"PTY_ID":"01"}],"addresses":[],"partiesCount":1,"addressesCount":0}`, rr.Body.String())
}

type fixedValidator struct{}

func (fixedValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	if token != "valid" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return &auth.JWTClaims{Subject: "operator-7"}, nil
}

func (s *ClientHandlerSuite) TestMutationsRequireBearerWhenConfigured() {
	router := s.newRouter(fixedValidator{})

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodDelete, "/clients/01"))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)

	s.service.EXPECT().List(gomock.Any()).Return(&models.ListResult{Clients: []join.ClientView{}, Source: models.SourceStore}, nil)
	rr = testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/clients"))
	testutil.AssertStatusOK(s.T(), rr)

	s.service.EXPECT().DeleteClient(gomock.Any(), "01").Return(&models.DeleteClientResult{}, nil)
	req := testutil.NewRequest(s.T(), http.MethodDelete, "/clients/01")
	req.Header.Set("Authorization", "Bearer valid")
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(s.T(), rr)
}
