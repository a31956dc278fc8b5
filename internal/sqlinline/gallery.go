package sqlinline

// QSelectGalleryPage lists published stories (both artifacts present) with
// author name and rating aggregates, newest first.
const QSelectGalleryPage = `--sql 4f951c31-1e02-439a-a447-e0cb94fd729e
select s.id,
       s.topic,
       s.grade,
       s.subject,
       s.story_url,
       s.worksheet_url,
       s.created_at,
       u.name as author_name,
       coalesce(round(avg(r.rating)::numeric, 1), 0) as average_rating,
       count(distinct r.id) as total_ratings,
       count(distinct c.id) as total_comments
from stories s
join users u on u.id = s.user_id
left join ratings r on r.story_id = s.id
left join comments c on c.story_id = s.id
where s.story_url <> '' and s.worksheet_url <> ''
group by s.id, u.name
order by s.created_at desc
limit $1::int offset $2::int;
`

const QCountGalleryStories = `--sql bc5725b0-c53a-4cb3-8a37-473912fe22c7
select count(*)
from stories
where story_url <> '' and worksheet_url <> '';
`

// QSelectGalleryComments returns the three newest comments for each story in
// the given page.
const QSelectGalleryComments = `--sql 02fcf2a9-8a29-4e28-85c3-29cfc8291af6
select story_id, id, content, author_name, created_at
from (
    select c.story_id,
           c.id,
           c.content,
           u.name as author_name,
           c.created_at,
           row_number() over (partition by c.story_id order by c.created_at desc) as rn
    from comments c
    join users u on u.id = c.user_id
    where c.story_id = any($1::uuid[])
) ranked
where rn <= 3
order by story_id, created_at desc;
`

const QSelectStoryPublished = `--sql 2cc8986e-8f22-4902-aeb7-8ab4efcfc921
select id from stories
where id = $1::uuid and story_url <> '' and worksheet_url <> ''
limit 1;
`

const QUpsertRating = `--sql 4f1b3ec7-9e96-480d-8e90-e18ea25e58a9
insert into ratings (id, story_id, user_id, rating, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::int, now(), now())
on conflict (story_id, user_id) do update
set rating = excluded.rating,
    updated_at = now()
returning id, rating, created_at, updated_at;
`

const QInsertComment = `--sql aa5d7c6e-0ac3-404f-b697-c3cd1a8e3179
with inserted as (
    insert into comments (id, story_id, user_id, content, created_at)
    values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, now())
    returning id, story_id, user_id, content, created_at
)
select i.id, i.content, u.name as author_name, i.created_at
from inserted i
join users u on u.id = i.user_id;
`
