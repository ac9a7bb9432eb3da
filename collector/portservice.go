package collector

// portServiceNames is a static well-known-port -> service-label lookup,
// consulted by the renderer when labeling a connection's remote port.
var portServiceNames = map[uint16]string{
	20:    "FTP-DATA",
	21:    "FTP",
	22:    "SSH",
	23:    "TELNET",
	25:    "SMTP",
	53:    "DNS",
	67:    "DHCP-S",
	68:    "DHCP-C",
	80:    "HTTP",
	110:   "POP3",
	123:   "NTP",
	143:   "IMAP",
	161:   "SNMP",
	389:   "LDAP",
	443:   "HTTPS",
	445:   "SMB",
	465:   "SMTPS",
	587:   "SUBMIT",
	636:   "LDAPS",
	993:   "IMAPS",
	995:   "POP3S",
	1433:  "MSSQL",
	1723:  "PPTP",
	3306:  "MySQL",
	3389:  "RDP",
	5060:  "SIP",
	5222:  "XMPP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	6379:  "Redis",
	8080:  "HTTP-Alt",
	8443:  "HTTPS-Alt",
	9090:  "Prometheus",
	9200:  "Elastic",
	27017: "MongoDB",
}

// PortServiceName returns the well-known service label for port, if any.
func PortServiceName(port uint16) (string, bool) {
	name, ok := portServiceNames[port]
	return name, ok
}
