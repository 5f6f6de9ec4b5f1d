package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SadmanRahman12/GreenZen/middleware"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func getUserName(ctx *gin.Context) string {
	v, ok := ctx.Get(middleware.ContextUserNameKey)
	if !ok {
		return ""
	}
	name, _ := v.(string)
	return name
}

func isAdmin(ctx *gin.Context) bool {
	v, ok := ctx.Get(middleware.ContextIsAdminKey)
	return ok && v == true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
