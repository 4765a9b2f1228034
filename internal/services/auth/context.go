package auth

import "context"

type claimContextKey string

const claimKey claimContextKey = "telegram_claim"

func WithClaim(ctx context.Context, claim UserClaim) context.Context {
	return context.WithValue(ctx, claimKey, claim)
}

func ClaimFromContext(ctx context.Context) (UserClaim, bool) {
	claim, ok := ctx.Value(claimKey).(UserClaim)
	return claim, ok
}
