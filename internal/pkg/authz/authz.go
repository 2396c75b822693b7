package authz

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/sirupsen/logrus"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	ObjMaintenance  = "maintenance"
	ObjComplaint    = "complaint"
	ObjAssignment   = "assignment"
	ObjFine         = "fine"
	ObjAttachment   = "attachment"
	ObjDashboard    = "dashboard"
	ObjNotification = "notification"
	ObjAudit        = "audit"
)

const (
	ActCreate     = "create"
	ActRead       = "read"
	ActUpdate     = "update"
	ActDelete     = "delete"
	ActTransition = "transition"
	ActClaim      = "claim"
	ActDrop       = "drop"
	ActComment    = "comment"
	ActRevoke     = "revoke"
	ActPay        = "pay"
	ActAppeal     = "appeal"
	ActDecide     = "decide"
)

// Role permissions. Admin inherits everything staff can do; dorm scope and
// ownership are checked by the services.
var defaultPolicies = [][]string{
	{"student", ObjMaintenance, ActCreate},
	{"student", ObjMaintenance, ActRead},
	{"student", ObjMaintenance, ActUpdate},
	{"student", ObjMaintenance, ActDelete},
	{"student", ObjMaintenance, ActComment},
	{"student", ObjComplaint, ActCreate},
	{"student", ObjComplaint, ActRead},
	{"student", ObjComplaint, ActDrop},
	{"student", ObjComplaint, ActComment},
	{"student", ObjAttachment, ActCreate},
	{"student", ObjAttachment, ActDelete},
	{"student", ObjAssignment, ActRead},
	{"student", ObjFine, ActRead},
	{"student", ObjFine, ActPay},
	{"student", ObjFine, ActAppeal},
	{"student", ObjNotification, ActRead},
	{"student", ObjNotification, ActUpdate},

	{"staff", ObjMaintenance, ActRead},
	{"staff", ObjMaintenance, ActTransition},
	{"staff", ObjMaintenance, ActComment},
	{"staff", ObjComplaint, ActRead},
	{"staff", ObjComplaint, ActClaim},
	{"staff", ObjComplaint, ActTransition},
	{"staff", ObjComplaint, ActComment},
	{"staff", ObjAssignment, ActCreate},
	{"staff", ObjAssignment, ActRead},
	{"staff", ObjAssignment, ActRevoke},
	{"staff", ObjFine, ActCreate},
	{"staff", ObjFine, ActRead},
	{"staff", ObjFine, ActDecide},
	{"staff", ObjDashboard, ActRead},
	{"staff", ObjAudit, ActRead},
	{"staff", ObjNotification, ActRead},
	{"staff", ObjNotification, ActUpdate},
}

var defaultGroupings = [][]string{
	{"admin", "staff"},
}

type Authorizer struct {
	enforcer *casbin.Enforcer
	logger   *logrus.Entry
}

func NewAuthorizer(logger *logrus.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}

	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	if _, err := enf.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("authz: failed to load policies: %w", err)
	}
	if _, err := enf.AddGroupingPolicies(defaultGroupings); err != nil {
		return nil, fmt.Errorf("authz: failed to load role groupings: %w", err)
	}

	entry := logrus.NewEntry(logrus.StandardLogger())
	if logger != nil {
		entry = logrus.NewEntry(logger)
	}

	return &Authorizer{
		enforcer: enf,
		logger:   entry.WithField("component", "authz"),
	}, nil
}

// Can reports whether role may perform act on obj. Enforcer errors deny.
func (a *Authorizer) Can(role, obj, act string) bool {
	allowed, err := a.enforcer.Enforce(role, obj, act)
	if err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"role":   role,
			"object": obj,
			"action": act,
		}).Error("authz enforce failed")
		return false
	}
	return allowed
}
