// Package gate is the single authorization decision point consulted before
// restricted actions.
package gate

// Action is one user-triggerable operation subject to gating.
type Action int

const (
	ActionQuickTopics Action = iota
	ActionFormsBrowse
	ActionFormFill
	ActionFAQLookup
	ActionFreeText
	ActionProfileView
	ActionLocaleToggle
	ActionHelp
	ActionCancel
	ActionLoginSubmit
	ActionVerifyStep
	ActionMyID
)

// restricted lists the actions available only to verified users.
var restricted = map[Action]bool{
	ActionQuickTopics: true,
	ActionFormsBrowse: true,
	ActionFormFill:    true,
	ActionFAQLookup:   true,
	ActionFreeText:    true,
}

// Allowed reports whether the action may proceed. Administrators always
// pass; everyone else needs the persisted verified flag for restricted
// actions. Unrestricted actions are never gated.
func Allowed(isAdmin, verified bool, action Action) bool {
	if isAdmin {
		return true
	}
	if !restricted[action] {
		return true
	}
	return verified
}
