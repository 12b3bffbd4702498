package services

// currentUserQuery fetches the user's groups and their projects, with the
// last commit and project members for each project. The query text is an
// opaque payload as far as this service is concerned; the raw result is
// handed to the view untouched.
const currentUserQuery = `
  query {
    currentUser {
      groups(first: 6) {
        pageInfo {
          endCursor
          hasNextPage
        }
        nodes {
          id
          name
          fullPath
          avatarUrl
          path
          projects(first: 10, includeSubgroups: true) {
            nodes {
              id
              name
              fullPath
              avatarUrl
              path
              repository {
                tree {
                  lastCommit {
                    authoredDate
                    author {
                      name
                      username
                      avatarUrl
                    }
                  }
                }
              }
              projectMembers {
                nodes {
                  createdBy {
                    name
                    avatarUrl
                    username
                  }
                }
              }
            }
          }
        }
      }
    }
  }
`
