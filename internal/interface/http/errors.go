package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/response"
)

// writeError maps a service error to its status code. Internal causes are logged
// and replaced by a generic message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"route":      c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, apperror.HTTPStatus(kind), apperror.MessageOf(err), gin.H{"code": kind.String()})
}

// pathID reads a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.InvalidInput("invalid " + name)
	}
	return id, nil
}
