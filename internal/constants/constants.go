package constants

// Referral status values carried on the user record.
const (
	ReferralStatusPendingPayment = "pending_payment"
	ReferralStatusActive         = "active"
	ReferralStatusSuspended      = "suspended"
	ReferralStatusCancelled      = "cancelled"
	ReferralStatusAdminAssigned  = "admin_assigned"
	ReferralStatusAutoAssigned   = "auto_assigned"
)

// Referral relationship status values.
const (
	ReferralRecordStatusPending   = "pending"
	ReferralRecordStatusCompleted = "completed"
)

// Referral attachment sources.
const (
	ReferralSourceCode  = "code"
	ReferralSourceAuto  = "auto"
	ReferralSourceAdmin = "admin"
)

// Orphan assignment reasons.
const (
	OrphanReasonNoLocation       = "NO_LOCATION"
	OrphanReasonNoLeaderInRadius = "NO_LEADER_IN_RADIUS"
)

// Role names, ordered by level. Area and village coordinator share level 4
// and fork on the member's urban/rural flag.
const (
	RoleMember                  = "member"
	RoleVolunteer               = "volunteer"
	RoleTeamLeader              = "team_leader"
	RoleAreaCoordinator         = "area_coordinator"
	RoleVillageCoordinator      = "village_coordinator"
	RoleMandalCoordinator       = "mandal_coordinator"
	RoleConstituencyCoordinator = "constituency_coordinator"
	RoleDistrictCoordinator     = "district_coordinator"
	RoleZonalCoordinator        = "zonal_regional_coordinator"
	RoleStateCoordinator        = "state_coordinator"
)

// Role levels.
const (
	RoleLevelMember       = 1
	RoleLevelVolunteer    = 2
	RoleLevelTeamLeader   = 3
	RoleLevelAreaVillage  = 4
	RoleLevelMandal       = 5
	RoleLevelConstituency = 6
	RoleLevelDistrict     = 7
	RoleLevelZonal        = 8
	RoleLevelState        = 9
)

// User account status values.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Membership payment status values.
const (
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
	PaymentStatusPending = "pending"
)

// Notification event types.
const (
	NotificationTypeRolePromotion  = "role_promotion"
	NotificationTypeOrphanAssigned = "orphan_assigned"
)

// Asynq task names.
const (
	TaskRolePromotionNotify  = "notify:role_promotion"
	TaskOrphanAssignedNotify = "notify:orphan_assigned"
	TaskOrphanSweep          = "referral:orphan_sweep"
)

// Queue names.
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)
