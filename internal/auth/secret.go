package auth

import "golang.org/x/crypto/bcrypt"

// VerifyGatewaySecret compares the shared secret presented by the chat
// gateway against its configured bcrypt hash. An empty hash disables
// verification (development mode).
func VerifyGatewaySecret(hash, secret string) bool {
	if hash == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// HashGatewaySecret produces the bcrypt hash to store in configuration.
func HashGatewaySecret(secret string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
