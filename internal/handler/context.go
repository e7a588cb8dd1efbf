package handler

import (
	"net/http"

	"cartable/internal/domain/services"
	"cartable/internal/httputil"
)

// callerFrom returns the identity the auth middleware attached to r
func callerFrom(r *http.Request) services.Caller {
	return services.Caller{
		UserKey: httputil.GetUserKey(r),
		Token:   httputil.GetToken(r),
	}
}
