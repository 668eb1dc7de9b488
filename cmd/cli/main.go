package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sanad-cli",
		Short: "Sanad CLI tool",
		Long:  `A command line interface for interacting with the Sanad API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Sanad API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SANAD_TOKEN"), "Session token (defaults to SANAD_TOKEN)")

	loginCmd := &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and print a session token",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			login(args[0], args[1])
		},
	}
	rootCmd.AddCommand(loginCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Terminate the current session",
		Run: func(cmd *cobra.Command, args []string) {
			logout()
		},
	}
	rootCmd.AddCommand(logoutCmd)

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the current session",
		Run: func(cmd *cobra.Command, args []string) {
			whoami()
		},
	}
	rootCmd.AddCommand(whoamiCmd)

	// User commands
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management operations",
	}

	userListCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Run: func(cmd *cobra.Command, args []string) {
			listUsers()
		},
	}
	userCmd.AddCommand(userListCmd)

	var (
		createEmail      string
		createFullName   string
		createRole       string
		createDepartment string
	)
	userCreateCmd := &cobra.Command{
		Use:   "create <username> <password>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			createUser(args[0], args[1], createEmail, createFullName, createRole, createDepartment)
		},
	}
	userCreateCmd.Flags().StringVar(&createEmail, "email", "", "Email address")
	userCreateCmd.Flags().StringVar(&createFullName, "full-name", "", "Full name")
	userCreateCmd.Flags().StringVar(&createRole, "role", "employee", "Role (admin, supervisor, employee, viewer)")
	userCreateCmd.Flags().StringVar(&createDepartment, "department", "", "Department")
	userCmd.AddCommand(userCreateCmd)

	rootCmd.AddCommand(userCmd)

	permissionsCmd := &cobra.Command{
		Use:   "permissions [role]",
		Short: "Show the grant summary for a role",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			role := ""
			if len(args) == 1 {
				role = args[0]
			}
			permissionSummary(role)
		},
	}
	rootCmd.AddCommand(permissionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func login(username, password string) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp := doRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))

	var result struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	decode(resp, &result)

	if !result.Success {
		fmt.Printf("Login failed: %s\n", result.Message)
		os.Exit(1)
	}

	fmt.Println(result.Token)
}

func logout() {
	resp := doRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(resp, &result)

	fmt.Println(result.Message)
	if !result.Success {
		os.Exit(1)
	}
}

func whoami() {
	resp := doRequest(http.MethodGet, "/api/v1/auth/me", nil)
	printJSON(resp)
}

func listUsers() {
	resp := doRequest(http.MethodGet, "/api/v1/users", nil)
	printJSON(resp)
}

func createUser(username, password, email, fullName, role, department string) {
	body, _ := json.Marshal(map[string]string{
		"username":   username,
		"password":   password,
		"email":      email,
		"full_name":  fullName,
		"role":       role,
		"department": department,
	})

	resp := doRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(body))
	printJSON(resp)
}

func permissionSummary(role string) {
	path := "/api/v1/permissions/summary"
	if role != "" {
		path += "?role=" + role
	}

	resp := doRequest(http.MethodGet, path, nil)
	printJSON(resp)
}

func doRequest(method, path string, body io.Reader) *http.Response {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}

	return resp
}

func decode(resp *http.Response, out any) {
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, out); err != nil {
		fmt.Printf("Failed to parse response (status %d): %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}
}

func printJSON(resp *http.Response) {
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
	} else {
		fmt.Println(buf.String())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		os.Exit(1)
	}
}
