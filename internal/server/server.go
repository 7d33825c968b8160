package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"checkin-desk/internal/checkin"
	"checkin-desk/internal/config"
	"checkin-desk/internal/logstore"
	"checkin-desk/internal/notify"
	"checkin-desk/internal/roster"
	"checkin-desk/internal/util"
)

// Deps is everything the router needs; the desk page is an external
// caller that only ever talks to these endpoints.
type Deps struct {
	Cfg      config.Config
	Pipeline *checkin.Pipeline
	Roster   *roster.Store
	Store    *logstore.Store
	Backup   *logstore.Backup
	Notifier notify.Notifier
}

func NewRouter(d Deps) *gin.Engine {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/sessions", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"sessions": d.Pipeline.Sessions()})
		})

		api.GET("/roster", func(c *gin.Context) {
			// empty on fetch failure; the page degrades to walk-in only
			c.JSON(http.StatusOK, gin.H{"participants": d.Roster.List()})
		})

		api.POST("/checkin/preregistered", func(c *gin.Context) {
			var req struct {
				Session  string `json:"session"`
				Code     string `json:"code"`
				Name     string `json:"name"`
				Category string `json:"category"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
				return
			}
			res, err := d.Pipeline.SubmitPreRegistered(c.Request.Context(), req.Session, req.Code, req.Name, req.Category)
			writeSubmitResponse(c, d, res, err)
		})

		api.POST("/checkin/walkin", func(c *gin.Context) {
			var req struct {
				Session string `json:"session"`
				Code    string `json:"code"`
				Name    string `json:"name"`
				Email   string `json:"email"`
				Phone   string `json:"phone"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
				return
			}
			res, err := d.Pipeline.SubmitWalkIn(c.Request.Context(), req.Session, req.Code, req.Name, req.Email, req.Phone)
			writeSubmitResponse(c, d, res, err)
		})

		api.GET("/live", func(c *gin.Context) {
			limit := 10
			if raw := c.Query("limit"); raw != "" {
				if v, err := strconv.Atoi(raw); err == nil {
					limit = v
				}
			}
			recs, err := d.Pipeline.Recent(c.Query("session"), limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"checkins": recs})
		})
	}

	admin := r.Group("/admin", adminAuth(d.Cfg.AdminSecret))
	{
		admin.GET("/export.csv", func(c *gin.Context) {
			data, err := d.Backup.Export()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.Header("Content-Disposition", `attachment; filename="checkin_backup.csv"`)
			c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		})

		admin.GET("/log", func(c *gin.Context) {
			recs, err := d.Store.ReadAll()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"checkins": recs})
		})

		admin.POST("/sync", func(c *gin.Context) {
			total, added, err := d.Store.SyncLocalToRemote()
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			d.Notifier.Notify(fmt.Sprintf("Backup sync done: %d records on remote, %d added from backup.", total, added))
			c.JSON(http.StatusOK, gin.H{"total": total, "added": added})
		})
	}

	return r
}

func writeSubmitResponse(c *gin.Context, d Deps, res checkin.Result, err error) {
	var verr *checkin.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": res.Outcome.String(), "record": res.Record})
	case errors.Is(err, checkin.ErrCodeMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "code_mismatch"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Reason.String()})
	default:
		// local sink failure: the one case where a record may be lost
		log.Printf("server: submission failed: %v", err)
		d.Notifier.Notify("🚨 Local backup write failed: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check-in could not be saved, please alert staff"})
	}
}

// adminAuth gates admin routes with an HMAC token derived from the admin
// secret, accepted either as a query parameter (for download links) or a
// header.
func adminAuth(secret string) gin.HandlerFunc {
	expected := util.HMACSHA256Hex(secret, "admin")
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = c.GetHeader("X-Admin-Token")
		}
		if token != expected {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}
