package http

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/open-policy-agent/opa/rego"
)

var ErrPermissionDenied = errors.New("permission denied")

// DefaultPolicy grants permissions of the form "<resource>.<action>" to
// roles. A "*" grant allows everything.
const DefaultPolicy = `package cms

import rego.v1

default allow := false

grants := {
	"admin": ["*"],
	"editor": ["content.read", "content.write", "translations.read", "translations.sync"],
	"translator": ["content.read", "translations.read", "translations.write", "translations.sync"],
}

allow if {
	some role in input.roles
	some grant in grants[role]
	matches(grant, input.permission)
}

matches(grant, _) if grant == "*"

matches(grant, permission) if grant == permission
`

type Policy interface {
	Eval(ctx context.Context, roles []string, permission string) (bool, error)
}

// NewRegoPolicy loads the policy at path, or DefaultPolicy when the file
// does not exist.
func NewRegoPolicy(ctx context.Context, path string) (Policy, error) {
	module := DefaultPolicy

	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		if err == nil {
			module = string(bs)
		}
	}

	query, err := rego.New(
		rego.Query("data.cms.allow"),
		rego.Module("cms.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}

	return &regoPolicy{query}, nil
}

type regoPolicy struct {
	query rego.PreparedEvalQuery
}

func (p *regoPolicy) Eval(ctx context.Context, roles []string, permission string) (bool, error) {
	input := map[string]any{
		"roles":      roles,
		"permission": permission,
	}

	rs, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}

	return rs.Allowed(), nil
}

const ClaimsKey = "claims"

// Authorizator returns a middleware factory checking the bearer token and
// the permission it is given.
func Authorizator(policy Policy) func(permission string) gin.HandlerFunc {
	return func(permission string) gin.HandlerFunc {
		return func(c *gin.Context) {
			var claims Claims
			if err := ParseToken(c, &claims); err != nil {
				unauthorized(c, http.StatusUnauthorized, err)
				return
			}

			allowed, err := policy.Eval(c, claims.Roles, permission)
			if err != nil {
				unauthorized(c, http.StatusForbidden, err)
				return
			}

			if !allowed {
				unauthorized(c, http.StatusForbidden, ErrPermissionDenied)
				return
			}

			c.Set(ClaimsKey, &claims)
			c.Next()
		}
	}
}
