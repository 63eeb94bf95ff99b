package auth

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/util"
)

// NewEnforcer creates and configures a new Casbin enforcer from the
// model configuration at modelPath.
//
// Policies are held in memory and seeded at startup: the role table is
// fixed (anonymous, staff, admin) and never edited at runtime, so
// there is nothing to persist.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	enforcer, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, err
	}

	// keyMatch2 allows :param style wildcards in route policies
	// (e.g. matching "/posts/:id/edit" to "/posts/101/edit").
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)

	return enforcer, nil
}
