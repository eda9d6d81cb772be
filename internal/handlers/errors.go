// internal/handlers/errors.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/models"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

type errorMapping struct {
	status int
	key    string
}

var errorTable = map[services.ErrorKind]errorMapping{
	services.KindUnauthorized:       {http.StatusForbidden, i18n.KeyErrorUnauthorized},
	services.KindInvalidParameter:   {http.StatusBadRequest, i18n.KeyValidationInvalid},
	services.KindInvalidState:       {http.StatusConflict, i18n.KeyErrorInvalidState},
	services.KindNotFound:           {http.StatusNotFound, i18n.KeyErrorNotFound},
	services.KindPatentNotActive:    {http.StatusConflict, i18n.KeyPatentNotActive},
	services.KindAuctionClosed:      {http.StatusConflict, i18n.KeyAuctionClosed},
	services.KindAuctionStillOpen:   {http.StatusConflict, i18n.KeyAuctionStillOpen},
	services.KindAuctionAlreadyOpen: {http.StatusConflict, i18n.KeyAuctionAlreadyOpen},
	services.KindAlreadyVerified:    {http.StatusConflict, i18n.KeyRoyaltyAlreadyVerified},
	services.KindInternal:           {http.StatusInternalServerError, i18n.KeyErrorInternal},
}

// respondError writes a ledger error using its kind.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	kind := services.KindOf(err)

	if kind == services.KindInvalidParameter {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
	}

	mapping, ok := errorTable[kind]
	if !ok {
		mapping = errorTable[services.KindInternal]
	}

	if kind == services.KindInternal {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Ledger operation failed")
		utils.ErrorResponse(c, mapping.status, string(kind), i18n.T(lang, mapping.key), nil)
		return
	}

	message := i18n.T(lang, mapping.key)
	if kind == services.KindInvalidParameter {
		message = i18n.T(lang, mapping.key, "input")
	}
	utils.ErrorResponse(c, mapping.status, string(kind), message, err.Error())
}

// callerFrom returns the authenticated principal or writes a 401.
func callerFrom(c *gin.Context) (models.PrincipalID, bool) {
	principal, exists := utils.GetPrincipalFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return "", false
	}
	return models.PrincipalID(principal), true
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}
