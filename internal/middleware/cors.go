package middleware

import "net/http"

// CORS 为所有响应添加跨域头，接口均为只读 GET。
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET")
		next.ServeHTTP(w, r)
	})
}
