package httptransport

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/access"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/aggregate"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/correlation"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe/gatewaytest"
	jwttoken "github.com/randi412-cooperh/RetailCrimeFhe/internal/jwt_token"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pattern"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pending"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/screening"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/verifier"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

type RouterSuite struct {
	suite.Suite

	server  *httptest.Server
	gateway *gatewaytest.Fake
	policy  *access.Policy
	jwt     *jwttoken.JWTService
	caller  domain.RetailerID
	token   string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.gateway = gatewaytest.New()
	s.policy = access.NewPolicy()
	s.caller = domain.NewRetailerID()
	s.policy.Grant(s.caller)

	pendings := pending.NewInMemoryStore()
	guard := pending.NewGuard(pendings, pending.WithLogger(quiet))
	proofs := verifier.New(s.gateway, quiet)
	sink := notify.NewMemorySink()

	ledgerStore := ledger.NewInMemoryStore()
	patternStore := pattern.NewInMemoryStore()
	aggregateStore := aggregate.NewInMemoryStore()

	ledgerSvc := ledger.NewService(ledgerStore, s.policy, patternStore, sink, ledger.WithLogger(quiet))
	patternSvc := pattern.NewService(s.policy, ledgerSvc, s.gateway, guard, proofs, patternStore, sink, pattern.WithLogger(quiet))
	aggregateSvc := aggregate.NewService(aggregateStore, s.policy, s.gateway, guard, proofs,
		aggregate.LogSink{Logger: quiet}, sink, aggregate.WithLogger(quiet))
	correlationSvc := correlation.NewService(s.policy, aggregateStore, s.gateway, guard, proofs,
		correlation.NewInMemoryStore(), sink, correlation.WithLogger(quiet))
	screeningSvc := screening.NewService(ledgerSvc, s.gateway, screening.WithLogger(quiet))

	s.jwt = jwttoken.NewJWTService("router-test-key", "retail-crime-core", "retailers")
	token, err := s.jwt.GenerateAccessToken(s.caller, time.Hour)
	s.Require().NoError(err)
	s.token = token

	handler := NewHandler(ledgerSvc, patternSvc, aggregateSvc, correlationSvc, screeningSvc, s.policy, s.gateway, quiet)
	s.server = httptest.NewServer(NewRouter(handler, jwttoken.NewJWTServiceAdapter(s.jwt), quiet))
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) do(method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *RouterSuite) decode(resp *http.Response, out any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

func handleB64(v uint64) string {
	return base64.StdEncoding.EncodeToString(gatewaytest.EncryptValue(v).Bytes())
}

func (s *RouterSuite) submitIncident() IncidentResponse {
	resp := s.do(http.MethodPost, "/incidents", s.token, map[string]string{
		"retailer": handleB64(1),
		"loss":     handleB64(500),
		"location": handleB64(3),
		"product":  handleB64(4),
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var out IncidentResponse
	s.decode(resp, &out)
	return out
}

func (s *RouterSuite) TestAuthentication() {
	s.Run("rejects requests without a token", func() {
		resp := s.do(http.MethodPost, "/incidents", "", map[string]string{})
		defer resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("rejects garbage tokens", func() {
		resp := s.do(http.MethodGet, "/incidents", "nonsense", nil)
		defer resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("authenticated but unapproved retailers get forbidden", func() {
		stranger, err := s.jwt.GenerateAccessToken(domain.NewRetailerID(), time.Hour)
		s.Require().NoError(err)

		resp := s.do(http.MethodPost, "/incidents", stranger, map[string]string{
			"retailer": handleB64(1),
			"loss":     handleB64(2),
			"location": handleB64(3),
			"product":  handleB64(4),
		})
		defer resp.Body.Close()
		s.Equal(http.StatusForbidden, resp.StatusCode)
	})
}

func (s *RouterSuite) TestIncidentEndpoints() {
	s.Run("submit then read back", func() {
		created := s.submitIncident()
		s.EqualValues(1, created.ID)

		resp := s.do(http.MethodGet, fmt.Sprintf("/incidents/%d", created.ID), s.token, nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var got IncidentResponse
		s.decode(resp, &got)
		s.Equal(created.Loss, got.Loss)
	})

	s.Run("malformed body is a bad request", func() {
		resp := s.do(http.MethodPost, "/incidents", s.token, map[string]string{
			"retailer": "not-base64!!!",
		})
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("unknown incident is not found", func() {
		resp := s.do(http.MethodGet, "/incidents/9999", s.token, nil)
		defer resp.Body.Close()
		s.Equal(http.StatusNotFound, resp.StatusCode)
	})
}

func (s *RouterSuite) TestAnalysisRoundTrip() {
	s.submitIncident()
	s.submitIncident()

	resp := s.do(http.MethodPost, "/analyses/joint", s.token, map[string]any{
		"incident_ids": []int64{1, 2},
	})
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)
	var accepted RequestAcceptedResponse
	s.decode(resp, &accepted)
	s.Require().NotEmpty(accepted.RequestID)

	results := [3]fhe.Handle{
		gatewaytest.EncryptValue(3),
		gatewaytest.EncryptValue(900),
		gatewaytest.EncryptValue(55),
	}
	proof := s.gateway.ProofFor(domain.RequestID(accepted.RequestID),
		fhe.EncodeResultPayload(results[0], results[1], results[2]))

	callback := map[string]any{
		"request_id": accepted.RequestID,
		"results": []string{
			base64.StdEncoding.EncodeToString(results[0].Bytes()),
			base64.StdEncoding.EncodeToString(results[1].Bytes()),
			base64.StdEncoding.EncodeToString(results[2].Bytes()),
		},
		"proof": base64.StdEncoding.EncodeToString(proof),
	}

	s.Run("callback lands without a bearer token", func() {
		resp := s.do(http.MethodPost, "/gateway/callbacks/pattern", "", callback)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var p PatternResponse
		s.decode(resp, &p)
		s.True(p.Analyzed)
	})

	s.Run("replayed callback is rejected", func() {
		resp := s.do(http.MethodPost, "/gateway/callbacks/pattern", "", callback)
		defer resp.Body.Close()
		s.Equal(http.StatusNotFound, resp.StatusCode)
	})
}

func (s *RouterSuite) TestCallbackRejections() {
	s.submitIncident()
	s.submitIncident()
	resp := s.do(http.MethodPost, "/analyses/joint", s.token, map[string]any{
		"incident_ids": []int64{1, 2},
	})
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)
	var accepted RequestAcceptedResponse
	s.decode(resp, &accepted)

	s.Run("tampered proof maps to unprocessable entity", func() {
		results := []string{handleB64(1), handleB64(2), handleB64(3)}
		resp := s.do(http.MethodPost, "/gateway/callbacks/pattern", "", map[string]any{
			"request_id": accepted.RequestID,
			"results":    results,
			"proof":      base64.StdEncoding.EncodeToString([]byte("forged")),
		})
		defer resp.Body.Close()
		s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	})

	s.Run("kind confusion maps to conflict", func() {
		proof := s.gateway.ProofFor(domain.RequestID(accepted.RequestID), fhe.EncodePlaintextPayload(7))
		resp := s.do(http.MethodPost, "/gateway/callbacks/loss", "", map[string]any{
			"request_id": accepted.RequestID,
			"total_loss": 7,
			"proof":      base64.StdEncoding.EncodeToString(proof),
		})
		defer resp.Body.Close()
		s.Equal(http.StatusConflict, resp.StatusCode)
	})

	s.Run("unknown request maps to not found", func() {
		resp := s.do(http.MethodPost, "/gateway/callbacks/correlation", "", map[string]any{
			"request_id": "req-bogus",
			"score":      handleB64(1),
			"proof":      base64.StdEncoding.EncodeToString([]byte("x")),
		})
		defer resp.Body.Close()
		s.Equal(http.StatusNotFound, resp.StatusCode)
	})
}

func (s *RouterSuite) TestAggregateAndScreening() {
	s.Run("accrue then screen", func() {
		retailer := domain.NewRetailerID()
		resp := s.do(http.MethodPost, "/aggregates/accrue", s.token, map[string]string{
			"retailer": retailer.String(),
			"loss":     handleB64(400),
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var agg AggregateResponse
		s.decode(resp, &agg)
		s.NotEmpty(agg.TotalLoss)

		s.submitIncident()
		resp = s.do(http.MethodPost, "/screenings", s.token, map[string]string{
			"threshold": handleB64(100),
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var screen ScreeningResponse
		s.decode(resp, &screen)
		s.Require().Len(screen.Verdicts, 1)
	})

	s.Run("unapproved retailers cannot accrue", func() {
		stranger, err := s.jwt.GenerateAccessToken(domain.NewRetailerID(), time.Hour)
		s.Require().NoError(err)

		resp := s.do(http.MethodPost, "/aggregates/accrue", stranger, map[string]string{
			"retailer": domain.NewRetailerID().String(),
			"loss":     handleB64(50),
		})
		defer resp.Body.Close()
		s.Equal(http.StatusForbidden, resp.StatusCode)
	})

	s.Run("loss decryption for a missing aggregate is not found", func() {
		resp := s.do(http.MethodPost, "/aggregates/loss-decryption", s.token, map[string]string{
			"retailer": domain.NewRetailerID().String(),
		})
		defer resp.Body.Close()
		s.Equal(http.StatusNotFound, resp.StatusCode)
	})
}

func (s *RouterSuite) TestAdminApproval() {
	newcomer := domain.NewRetailerID()
	newcomerToken, err := s.jwt.GenerateAccessToken(newcomer, time.Hour)
	s.Require().NoError(err)

	submit := func() int {
		resp := s.do(http.MethodPost, "/incidents", newcomerToken, map[string]string{
			"retailer": handleB64(1),
			"loss":     handleB64(2),
			"location": handleB64(3),
			"product":  handleB64(4),
		})
		defer resp.Body.Close()
		return resp.StatusCode
	}

	s.Equal(http.StatusForbidden, submit())

	resp := s.do(http.MethodPut, "/admin/retailers/"+newcomer.String()+"/approval", s.token, nil)
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)
	s.Equal(http.StatusCreated, submit())

	resp = s.do(http.MethodDelete, "/admin/retailers/"+newcomer.String()+"/approval", s.token, nil)
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)
	s.Equal(http.StatusForbidden, submit())
}

func (s *RouterSuite) TestHealthz() {
	resp := s.do(http.MethodGet, "/healthz", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var health map[string]string
	s.decode(resp, &health)
	s.Equal("ok", health["gateway"])

	s.gateway.SetDown(true)
	resp = s.do(http.MethodGet, "/healthz", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &health)
	s.Equal("unreachable", health["gateway"])
}
