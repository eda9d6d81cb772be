package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"

	"github.com/javajoker/imi-ledger/internal/database"
	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/middleware"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *utils.APIError `json:"error"`
}

type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	vault  *gateway.Vault
	tokens map[string]string
}

func (suite *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("handler-test-secret")
	require.NoError(suite.T(), i18n.Initialize("en"))
}

func (suite *HandlerTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), "silent")
	require.NoError(suite.T(), err)
	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)
	suite.T().Cleanup(func() { sqlDB.Close() })
	require.NoError(suite.T(), database.RunMigrations(db))

	suite.vault, err = gateway.NewVault(bytes.Repeat([]byte{0x42}, 32), gateway.NewMemoryStore())
	require.NoError(suite.T(), err)

	ledger := services.NewLedger(db, suite.vault, services.LedgerOptions{})

	patents := NewPatentHandler(ledger.Patents)
	licenses := NewLicenseHandler(ledger.Licenses)
	royalties := NewRoyaltyHandler(ledger.Royalties)
	disclosures := NewDisclosureHandler(ledger.Disclosures)
	events := NewEventHandler(ledger.Events)

	r := gin.New()
	r.Use(middleware.I18nMiddleware())
	v1 := r.Group("/v1", middleware.AuthRequired())
	v1.POST("/patents", patents.RegisterPatent)
	v1.GET("/patents/:id", patents.GetPatent)
	v1.POST("/patents/:id/licenses", licenses.RequestLicense)
	v1.PUT("/licenses/:id/approve", licenses.ApproveLicense)
	v1.POST("/licenses/:id/royalties", royalties.PayRoyalties)
	v1.POST("/licenses/:id/royalties/:index/verify", royalties.RequestVerification)
	v1.POST("/disclosures", disclosures.Reveal)
	v1.GET("/events", events.ListEvents)
	v1.GET("/events/verify", middleware.AdminRequired(), events.VerifyChain)
	suite.router = r

	suite.tokens = map[string]string{}
	for _, p := range []string{"acct_owner", "acct_licensee", "acct_outsider"} {
		token, err := utils.GenerateJWT(p, "", 1)
		require.NoError(suite.T(), err)
		suite.tokens[p] = token
	}
	admin, err := utils.GenerateJWT("acct_admin", middleware.RoleAdmin, 1)
	require.NoError(suite.T(), err)
	suite.tokens["acct_admin"] = admin
}

func (suite *HandlerTestSuite) do(method, path, principal string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set("Authorization", "Bearer "+suite.tokens[principal])
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (suite *HandlerTestSuite) registerPatent() uint64 {
	w, resp := suite.do(http.MethodPost, "/v1/patents", "acct_owner", gin.H{
		"royalty_rate_bp": 500,
		"min_license_fee": 100,
		"validity_years":  5,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Patent struct {
			ID uint64 `json:"id"`
		} `json:"patent"`
	}
	require.NoError(suite.T(), json.Unmarshal(resp.Data, &data))
	return data.Patent.ID
}

func (suite *HandlerTestSuite) requestLicense(patentID uint64) (uint64, string) {
	w, resp := suite.do(http.MethodPost, fmt.Sprintf("/v1/patents/%d/licenses", patentID), "acct_licensee", gin.H{
		"fee":             150,
		"royalty_rate_bp": 500,
		"duration_days":   60,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		License struct {
			ID  uint64 `json:"id"`
			Fee struct {
				Handle string `json:"handle"`
			} `json:"fee"`
		} `json:"license"`
	}
	require.NoError(suite.T(), json.Unmarshal(resp.Data, &data))
	return data.License.ID, data.License.Fee.Handle
}

func (suite *HandlerTestSuite) TestRequiresAuthentication() {
	w, _ := suite.do(http.MethodPost, "/v1/patents", "", gin.H{"validity_years": 5})
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestRegisterPatentValidation() {
	w, resp := suite.do(http.MethodPost, "/v1/patents", "acct_owner", gin.H{
		"royalty_rate_bp": 10001,
		"validity_years":  5,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	require.NotNil(suite.T(), resp.Error)
	assert.Equal(suite.T(), "VALIDATION_ERROR", resp.Error.Code)

	w, _ = suite.do(http.MethodPost, "/v1/patents", "acct_owner", "not an object")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestErrorKindsMapToStatus() {
	patentID := suite.registerPatent()
	licenseID, _ := suite.requestLicense(patentID)

	w, resp := suite.do(http.MethodGet, "/v1/patents/999", "acct_owner", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), string(services.KindNotFound), resp.Error.Code)

	w, _ = suite.do(http.MethodGet, "/v1/patents/abc", "acct_owner", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	approvePath := fmt.Sprintf("/v1/licenses/%d/approve", licenseID)
	w, resp = suite.do(http.MethodPut, approvePath, "acct_licensee", gin.H{"duration_days": 60})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), string(services.KindUnauthorized), resp.Error.Code)

	w, _ = suite.do(http.MethodPut, approvePath, "acct_owner", gin.H{"duration_days": 60})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, resp = suite.do(http.MethodPut, approvePath, "acct_owner", gin.H{"duration_days": 60})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), string(services.KindInvalidState), resp.Error.Code)
}

func (suite *HandlerTestSuite) TestRevealHonoursGrants() {
	patentID := suite.registerPatent()
	_, feeHandle := suite.requestLicense(patentID)

	w, resp := suite.do(http.MethodPost, "/v1/disclosures", "acct_licensee", gin.H{"handle": feeHandle})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	var revealed services.RevealResponse
	require.NoError(suite.T(), json.Unmarshal(resp.Data, &revealed))
	assert.Equal(suite.T(), uint64(150), revealed.Value)

	w, _ = suite.do(http.MethodPost, "/v1/disclosures", "acct_outsider", gin.H{"handle": feeHandle})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodPost, "/v1/disclosures", "acct_licensee", gin.H{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestRoyaltyVerificationIsAccepted() {
	patentID := suite.registerPatent()
	licenseID, _ := suite.requestLicense(patentID)
	w, _ := suite.do(http.MethodPut, fmt.Sprintf("/v1/licenses/%d/approve", licenseID), "acct_owner", gin.H{"duration_days": 60})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodPost, fmt.Sprintf("/v1/licenses/%d/royalties", licenseID), "acct_licensee", gin.H{
		"reported_revenue":   2000,
		"transferred_amount": 100,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	verifyPath := fmt.Sprintf("/v1/licenses/%d/royalties/0/verify", licenseID)
	w, resp := suite.do(http.MethodPost, verifyPath, "acct_owner", nil)
	require.Equal(suite.T(), http.StatusAccepted, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(suite.T(), json.Unmarshal(resp.Data, &data))
	assert.NotEmpty(suite.T(), data.Token)

	assert.Equal(suite.T(), 1, suite.vault.Drain(context.Background()))

	w, resp = suite.do(http.MethodPost, verifyPath, "acct_owner", nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), string(services.KindAlreadyVerified), resp.Error.Code)
}

func (suite *HandlerTestSuite) TestVerifyChainRequiresAdmin() {
	suite.registerPatent()

	w, _ := suite.do(http.MethodGet, "/v1/events/verify", "acct_owner", nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodGet, "/v1/events/verify", "acct_admin", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, "/v1/events?kind=PatentRegistered", "acct_outsider", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
