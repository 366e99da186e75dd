package rest

import (
	"net/http"

	"lever/core"
	"lever/handler/render"

	"github.com/spf13/cast"
)

const maxTransferLimit = 500

func transfersHandler(transferStr core.ITransferStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := cast.ToInt(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > maxTransferLimit {
			limit = 100
		}

		transfers, e := transferStr.Top(ctx, limit)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, transfers)
	}
}
