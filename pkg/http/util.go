package http

import (
	xutil "FinScope/pkg/util"

	"github.com/labstack/echo/v4"
)

// QueryBool reads a flag such as ?fast=1; absent or unparseable yields def.
func QueryBool(c echo.Context, name string, def bool) bool {
	return xutil.ParseBoolDefault(c.QueryParam(name), def)
}

// QueryList reads a comma separated parameter such as ?symbols=AAPL,MSFT.
func QueryList(c echo.Context, name string) []string {
	return xutil.SplitCSV(c.QueryParam(name))
}
