package authorizer

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

const (
	policyVersion = "2012-10-17"
	invokeAction  = "execute-api:Invoke"
	effectAllow   = "Allow"
	effectDeny    = "Deny"
)

// AllowPolicy grants invoke on every route of the stage that methodArn
// belongs to, so a cached decision stays valid across routes.
func AllowPolicy(principalID, methodArn string, context map[string]interface{}) events.APIGatewayCustomAuthorizerResponse {
	return policy(principalID, effectAllow, StageWildcard(methodArn), context)
}

// DenyPolicy refuses invoke on methodArn.
func DenyPolicy(principalID, methodArn string) events.APIGatewayCustomAuthorizerResponse {
	return policy(principalID, effectDeny, methodArn, nil)
}

func policy(principalID, effect, resource string, context map[string]interface{}) events.APIGatewayCustomAuthorizerResponse {
	return events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: principalID,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: policyVersion,
			Statement: []events.IAMPolicyStatement{
				{
					Action:   []string{invokeAction},
					Effect:   effect,
					Resource: []string{resource},
				},
			},
		},
		Context: context,
	}
}

// StageWildcard turns
// arn:aws:execute-api:region:account:apiId/stage/VERB/path into
// arn:aws:execute-api:region:account:apiId/stage/*. Values that do not
// look like a method ARN are returned unchanged.
func StageWildcard(methodArn string) string {
	colon := strings.LastIndex(methodArn, ":")
	if colon < 0 {
		return methodArn
	}
	parts := strings.SplitN(methodArn[colon+1:], "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return methodArn
	}
	return methodArn[:colon+1] + parts[0] + "/" + parts[1] + "/*"
}
