package handler

import (
	"net/http"

	"airledger-backend/bootstrap"
	"airledger-backend/internal/interfaces/router"
)

var handler http.Handler

func init() {
	app, err := bootstrap.New()
	if err != nil {
		panic("app create: " + err.Error())
	}
	handler = router.Handler(app)
}

// Handler is the serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()
	handler.ServeHTTP(w, r)
}
