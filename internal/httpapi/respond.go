package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuongthieu-itme/ecm-be/internal/fault"
	"github.com/cuongthieu-itme/ecm-be/pkg/logging"
	"github.com/cuongthieu-itme/ecm-be/pkg/pagination"
)

// Success responses are wrapped the same way for every endpoint; existing
// clients rely on the {success, data, meta} shape.
func ok(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func okList(c *gin.Context, data any, meta pagination.Meta) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "meta": meta})
}

func okMessage(c *gin.Context, message string) {
	ok(c, http.StatusOK, gin.H{"message": message})
}

func fail(c *gin.Context, err error) {
	var code int
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		code = http.StatusNotFound
	case fault.KindInvalidRequest:
		code = http.StatusBadRequest
	case fault.KindForbidden:
		code = http.StatusForbidden
	case fault.KindConflict:
		code = http.StatusConflict
	default:
		logging.Log(logging.Fields{
			Service: "shop-server",
			Status:  "internal_error",
			Message: c.Request.Method + " " + c.FullPath() + ": " + err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(code, gin.H{"success": false, "error": err.Error()})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fault.InvalidRequest("invalid id")
	}
	return id, nil
}

// pageParams trusts validated positive integers per the transport contract
// and falls back to defaults on anything else.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = pagination.DefaultPage
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = pagination.DefaultLimit
	}
	return page, limit
}
