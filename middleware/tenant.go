// middleware/tenant.go - Tenant access predicate
package middleware

// CanAccessTenant decides whether a caller may touch a resource in the
// given tenant:
//
//   - super admins may access anything
//   - a resource with no tenant (legacy data) is open to every admin
//   - a caller with no tenant may not touch tenant-owned resources
//     unless they are a super admin
//   - otherwise the tenants must match
func CanAccessTenant(role, callerTenant, resourceTenant string) bool {
	if role == "super_admin" {
		return true
	}
	if resourceTenant == "" {
		return true
	}
	if callerTenant == "" {
		return false
	}
	return callerTenant == resourceTenant
}
