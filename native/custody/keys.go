package custody

var (
	nativeBalancePrefix = []byte("custody/native/")
	tokenBalancePrefix  = []byte("custody/token/")
)

func nativeKey(addr [20]byte) []byte {
	buf := make([]byte, 0, len(nativeBalancePrefix)+len(addr))
	buf = append(buf, nativeBalancePrefix...)
	return append(buf, addr[:]...)
}

func tokenKey(owner, token [20]byte) []byte {
	buf := make([]byte, 0, len(tokenBalancePrefix)+len(owner)+1+len(token))
	buf = append(buf, tokenBalancePrefix...)
	buf = append(buf, owner[:]...)
	buf = append(buf, '/')
	return append(buf, token[:]...)
}
