package genai

import "context"

// Request is the unit threaded through the middleware chain: the target
// model plus the request body. Middlewares may rewrite either before calling
// next.
type Request struct {
	Model string
	Body  *GenerateContentRequest
}

// SendFunc sends one generateContent request and returns the completed
// response. It is the base unit of the middleware chain.
type SendFunc func(ctx context.Context, req *Request) (*GenerateContentResponse, error)

// Middleware intercepts and optionally transforms requests and responses.
// Each Middleware receives the next SendFunc in the chain and returns a new
// SendFunc wrapping it. Middlewares apply outermost-first: the first entry
// in the slice is the first to see an incoming request.
type Middleware func(next SendFunc) SendFunc

// buildSendChain wraps base in the middlewares, applied in reverse so that
// middlewares[0] becomes the outermost wrapper.
func buildSendChain(base SendFunc, middlewares []Middleware) SendFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}
	return chain
}
