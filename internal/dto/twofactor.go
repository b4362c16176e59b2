package dto

// TwoFactorEnrollment is the provisioning artifact returned on enroll.
// QRPNG is a PNG image encoding the otpauth URI; JSON renders it base64.
type TwoFactorEnrollment struct {
	ProvisioningURI string `json:"provisioningUri"`
	QRPNG           []byte `json:"qrImage"`
}

type TwoFactorConfirmRequest struct {
	Code string `json:"code"`
}
