// Package authorizer implements an API Gateway Lambda authorizer that
// admits requests carrying the shared token (or a signed JWT) and refuses
// everything else.
//
// One handler serves the three payload shapes API Gateway produces:
// REST TOKEN and REQUEST authorizers, which answer with an IAM policy, and
// HTTP API payload 2.0 authorizers with simple responses enabled.
package authorizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

// ErrUnauthorized is the error API Gateway maps to a 401 response. The
// message text is significant and must stay exactly "Unauthorized".
var ErrUnauthorized = errors.New("Unauthorized")

// Decision is the outcome of checking one request.
type Decision struct {
	Allowed   bool
	Principal *auth.Principal
	Reason    string
	// Err is the rejection cause when Allowed is false.
	Err error
}

// Authorizer checks credentials found in authorizer events.
type Authorizer struct {
	verifier auth.Verifier
	header   string
	logger   *slog.Logger
}

// New creates an authorizer reading the credential from header.
func New(verifier auth.Verifier, header string, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{verifier: verifier, header: header, logger: logger}
}

// Check verifies a raw header value. A non-nil error means the check could
// not be performed; rejections are reported through Decision.
func (a *Authorizer) Check(ctx context.Context, headerValue string) (Decision, error) {
	token, err := auth.ExtractToken(a.header, headerValue)
	if err != nil {
		return Decision{Reason: err.Error(), Err: err}, nil
	}

	p, err := a.verifier.Verify(ctx, token)
	if err != nil {
		if auth.IsRejection(err) {
			return Decision{Reason: err.Error(), Err: err}, nil
		}
		return Decision{}, err
	}
	return Decision{Allowed: true, Principal: p}, nil
}

// payloadShape is enough of any authorizer event to pick a decoder.
type payloadShape struct {
	Version string `json:"version"`
	Type    string `json:"type"`
}

// Handle is the Lambda entrypoint. It decodes the event according to its
// shape and returns the matching response type.
func (a *Authorizer) Handle(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var shape payloadShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("decode authorizer event: %w", err)
	}

	switch {
	case shape.Version == "2.0":
		var req events.APIGatewayV2CustomAuthorizerV2Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decode v2 event: %w", err)
		}
		return a.HandleHTTPAPI(ctx, req)
	case shape.Type == "TOKEN":
		var req events.APIGatewayCustomAuthorizerRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decode token event: %w", err)
		}
		return a.HandleToken(ctx, req)
	case shape.Type == "REQUEST":
		var req events.APIGatewayCustomAuthorizerRequestTypeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decode request event: %w", err)
		}
		return a.HandleRequest(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported authorizer event (version=%q type=%q)", shape.Version, shape.Type)
	}
}

// HandleToken answers a REST API TOKEN authorizer.
func (a *Authorizer) HandleToken(ctx context.Context, req events.APIGatewayCustomAuthorizerRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	return a.policyFor(ctx, req.AuthorizationToken, req.MethodArn)
}

// HandleRequest answers a REST API REQUEST authorizer, reading the
// configured header.
func (a *Authorizer) HandleRequest(ctx context.Context, req events.APIGatewayCustomAuthorizerRequestTypeRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	return a.policyFor(ctx, auth.HeaderValue(req.Headers, a.header), req.MethodArn)
}

// HandleHTTPAPI answers an HTTP API authorizer using simple responses.
func (a *Authorizer) HandleHTTPAPI(ctx context.Context, req events.APIGatewayV2CustomAuthorizerV2Request) (events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
	d, err := a.Check(ctx, auth.HeaderValue(req.Headers, a.header))
	if err != nil {
		a.logger.ErrorContext(ctx, "authorizer check failed",
			slog.String("route_arn", req.RouteArn),
			slog.String("error", err.Error()))
		return events.APIGatewayV2CustomAuthorizerSimpleResponse{}, err
	}

	a.logDecision(ctx, d, req.RouteArn)
	if !d.Allowed {
		return events.APIGatewayV2CustomAuthorizerSimpleResponse{IsAuthorized: false}, nil
	}
	return events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: true,
		Context:      principalContext(d.Principal),
	}, nil
}

func (a *Authorizer) policyFor(ctx context.Context, headerValue, methodArn string) (events.APIGatewayCustomAuthorizerResponse, error) {
	d, err := a.Check(ctx, headerValue)
	if err != nil {
		a.logger.ErrorContext(ctx, "authorizer check failed",
			slog.String("method_arn", methodArn),
			slog.String("error", err.Error()))
		return events.APIGatewayCustomAuthorizerResponse{}, err
	}

	a.logDecision(ctx, d, methodArn)
	switch {
	case d.Allowed:
		return AllowPolicy(d.Principal.ID, methodArn, principalContext(d.Principal)), nil
	case errors.Is(d.Err, auth.ErrMissingToken):
		return events.APIGatewayCustomAuthorizerResponse{}, ErrUnauthorized
	default:
		return DenyPolicy("anonymous", methodArn), nil
	}
}

func (a *Authorizer) logDecision(ctx context.Context, d Decision, resource string) {
	if d.Allowed {
		a.logger.InfoContext(ctx, "request authorized",
			slog.String("resource", resource),
			slog.String("principal", d.Principal.ID),
			slog.String("method", d.Principal.Method))
		return
	}
	a.logger.WarnContext(ctx, "request denied",
		slog.String("resource", resource),
		slog.String("reason", d.Reason))
}

// principalContext is passed to the integration as $context.authorizer.*.
// API Gateway only accepts string, number and boolean values here.
func principalContext(p *auth.Principal) map[string]interface{} {
	return map[string]interface{}{
		"principalId": p.ID,
		"role":        p.Role,
		"authMethod":  p.Method,
	}
}
