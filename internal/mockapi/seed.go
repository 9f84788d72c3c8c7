package mockapi

import "users-admin/internal/shared/model"

// defaultUsers 默认用户种子数据
func defaultUsers() []model.User {
	return []model.User{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Role: model.RoleAdmin, Password: "password123"},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Role: model.RoleEditor, Password: "password123"},
		{ID: 3, Name: "Bob Johnson", Email: "bob@example.com", Role: model.RoleUser, Password: "password123"},
		{ID: 4, Name: "Alice Brown", Email: "alice@example.com", Role: model.RoleUser, Password: "password123"},
		{ID: 5, Name: "Charlie Wilson", Email: "charlie@example.com", Role: model.RoleEditor, Password: "password123"},
	}
}

// defaultPosts 默认帖子种子数据
func defaultPosts() []model.Post {
	return []model.Post{
		{ID: 1, Title: "First Post", Body: "This is the first post content", UserID: 1},
		{ID: 2, Title: "Second Post", Body: "This is the second post content", UserID: 1},
		{ID: 3, Title: "Introduction", Body: "Welcome to our platform", UserID: 2},
		{ID: 4, Title: "Tips and Tricks", Body: "Here are some useful tips", UserID: 3},
		{ID: 5, Title: "Best Practices", Body: "Follow these best practices", UserID: 2},
		{ID: 6, Title: "New Features", Body: "Check out our new features", UserID: 5},
		{ID: 7, Title: "Getting Started", Body: "How to get started with our product", UserID: 4},
		{ID: 8, Title: "Advanced Techniques", Body: "Learn advanced techniques", UserID: 3},
	}
}
