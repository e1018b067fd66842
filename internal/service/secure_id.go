package service

import (
	"crypto/rand"
	"encoding/base64"
)

// 对外标识的随机字节数；base64 url-safe 编码后为 28 个字符
const secureIDBytes = 21

// generateSecureID 生成不可猜测的对外标识（订单号、指派编号）
func generateSecureID(prefix string) string {
	buf := make([]byte, secureIDBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand 失败意味着系统熵源不可用，直接中止
		panic(err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf)
}

// generateOrderNo 生成订单编号
func generateOrderNo() string {
	return generateSecureID("ord_")
}

// generateAssignmentNo 生成配送指派编号
func generateAssignmentNo() string {
	return generateSecureID("dlv_")
}
