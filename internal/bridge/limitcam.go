package bridge

import (
	"strconv"

	"github.com/dop251/goja"
)

// camLimit tracks a cb.limitCam_* session. Membership changes are reported
// through CamAccessChanged.
type camLimit struct {
	running bool
	message string
	users   []string
}

func (c *camLimit) has(name string) bool {
	for _, u := range c.users {
		if u == name {
			return true
		}
	}
	return false
}

// add returns the names that were not members yet.
func (c *camLimit) add(names []string) []string {
	var added []string
	for _, n := range names {
		if n == "" || c.has(n) {
			continue
		}
		c.users = append(c.users, n)
		added = append(added, n)
	}
	return added
}

func (c *camLimit) remove(names []string) []string {
	var removed []string
	for _, n := range names {
		for i, u := range c.users {
			if u == n {
				c.users = append(c.users[:i], c.users[i+1:]...)
				removed = append(removed, n)
				break
			}
		}
	}
	return removed
}

func (c *camLimit) clear() []string {
	users := c.users
	*c = camLimit{}
	return users
}

func (b *Bridge) limitCamAPI(vm *goja.Runtime) map[string]any {
	grant := func(names []string) {
		for _, n := range b.cam.add(names) {
			b.emitCamAccess(n, true)
		}
	}
	revoke := func(names []string) {
		for _, n := range b.cam.remove(names) {
			b.emitCamAccess(n, false)
		}
	}
	return map[string]any{
		"limitCam_start": func(call goja.FunctionCall) goja.Value {
			b.cam.running = true
			b.cam.message = optString(call.Argument(0))
			grant(userList(call.Argument(1)))
			return goja.Undefined()
		},
		"limitCam_stop": func() {
			b.cam.running = false
			b.cam.message = ""
		},
		"limitCam_addUsers": func(call goja.FunctionCall) goja.Value {
			grant(userList(call.Argument(0)))
			return goja.Undefined()
		},
		"limitCam_removeUsers": func(call goja.FunctionCall) goja.Value {
			revoke(userList(call.Argument(0)))
			return goja.Undefined()
		},
		"limitCam_removeAllUsers": func() {
			revoke(append([]string(nil), b.cam.users...))
		},
		"limitCam_userHasAccess": func(name string) bool {
			return b.cam.has(name)
		},
		"limitCam_allUsersWithAccess": func() goja.Value {
			items := make([]any, len(b.cam.users))
			for i, u := range b.cam.users {
				items[i] = u
			}
			return vm.NewArray(items...)
		},
		"limitCam_isRunning": func() bool {
			return b.cam.running
		},
	}
}

// userList accepts a single name or an array of names.
func userList(v goja.Value) []string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return []string{v.String()}
	}
	n := arrayLen(obj)
	if n == 0 && obj.ClassName() != "Array" {
		return []string{v.String()}
	}
	out := make([]string, 0, n)
	for i := int64(0); i < n; i++ {
		if el := obj.Get(strconv.FormatInt(i, 10)); el != nil && !goja.IsUndefined(el) && !goja.IsNull(el) {
			out = append(out, el.String())
		}
	}
	return out
}

// CamLimit reports the current limitCam session.
func (b *Bridge) CamLimit() (running bool, message string, users []string) {
	return b.cam.running, b.cam.message, append([]string(nil), b.cam.users...)
}
